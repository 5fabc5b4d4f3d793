//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const maxModuleItems = 100

// Weekdays lists the valid mess menu days in display order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// NormalizeWeekday returns the canonical weekday name for value.
func NormalizeWeekday(value string) (string, bool) {
	v := strings.TrimSpace(value)
	for _, d := range Weekdays {
		if strings.EqualFold(d, v) {
			return d, true
		}
	}
	return "", false
}

// MessMenuDay is the menu served on one weekday.
type MessMenuDay struct {
	ID        string    `json:"id"         db:"id"`
	Day       string    `json:"day"        db:"day"`
	Breakfast string    `json:"breakfast"  db:"breakfast"`
	Lunch     string    `json:"lunch"      db:"lunch"`
	Dinner    string    `json:"dinner"     db:"dinner"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EmergencyContact is a phone contact shown on the dashboard.
type EmergencyContact struct {
	ID        string `json:"id"         db:"id"`
	Name      string `json:"name"       db:"name"`
	Role      string `json:"role"       db:"role"`
	Phone     string `json:"phone"      db:"phone"`
	SortOrder int    `json:"sort_order" db:"sort_order"`
}

// HostelRule is one line of the hostel rule book.
type HostelRule struct {
	ID        string `json:"id"         db:"id"`
	Rule      string `json:"rule"       db:"rule"`
	SortOrder int    `json:"sort_order" db:"sort_order"`
}

// QuickLink is a shortcut shown on the dashboard.
type QuickLink struct {
	ID        string `json:"id"         db:"id"`
	Title     string `json:"title"      db:"title"`
	URL       string `json:"url"        db:"url"`
	Icon      string `json:"icon"       db:"icon"`
	SortOrder int    `json:"sort_order" db:"sort_order"`
}

// HostelEvent is an upcoming event in the hostel calendar.
type HostelEvent struct {
	ID        string    `json:"id"                   db:"id"`
	Title     string    `json:"title"                db:"title"`
	EventDate time.Time `json:"event_date"           db:"event_date"`
	EventTime *string   `json:"event_time,omitempty" db:"event_time"`
	Location  *string   `json:"location,omitempty"   db:"location"`
	SortOrder int       `json:"sort_order"           db:"sort_order"`
}

// DashboardModules bundles every dashboard module.
type DashboardModules struct {
	MessMenu          []MessMenuDay      `json:"mess_menu"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts"`
	HostelRules       []HostelRule       `json:"hostel_rules"`
	QuickLinks        []QuickLink        `json:"quick_links"`
	Events            []HostelEvent      `json:"events"`
}

// ValidateMessMenu normalizes weekday names and rejects duplicates.
func ValidateMessMenu(days []MessMenuDay) error {
	if len(days) == 0 {
		return errors.New("at least one day is required")
	}
	seen := make(map[string]bool, len(days))
	for i := range days {
		d, ok := NormalizeWeekday(days[i].Day)
		if !ok {
			return fmt.Errorf("day %q is not a weekday", days[i].Day)
		}
		if seen[d] {
			return fmt.Errorf("day %s appears more than once", d)
		}
		seen[d] = true
		days[i].Day = d
		days[i].Breakfast = strings.TrimSpace(days[i].Breakfast)
		days[i].Lunch = strings.TrimSpace(days[i].Lunch)
		days[i].Dinner = strings.TrimSpace(days[i].Dinner)
	}
	return nil
}

// ValidateContacts trims and checks emergency contacts.
func ValidateContacts(items []EmergencyContact) error {
	if len(items) > maxModuleItems {
		return errors.New("too many contacts")
	}
	for i := range items {
		items[i].Name = strings.TrimSpace(items[i].Name)
		items[i].Role = strings.TrimSpace(items[i].Role)
		items[i].Phone = strings.TrimSpace(items[i].Phone)
		if items[i].Name == "" || items[i].Phone == "" {
			return fmt.Errorf("contact %d: name and phone are required", i+1)
		}
	}
	return nil
}

// ValidateRules trims and checks hostel rules.
func ValidateRules(items []HostelRule) error {
	if len(items) > maxModuleItems {
		return errors.New("too many rules")
	}
	for i := range items {
		items[i].Rule = strings.TrimSpace(items[i].Rule)
		if items[i].Rule == "" {
			return fmt.Errorf("rule %d is empty", i+1)
		}
	}
	return nil
}

// ValidateLinks trims and checks quick links. URLs must be absolute http(s) or site-relative.
func ValidateLinks(items []QuickLink) error {
	if len(items) > maxModuleItems {
		return errors.New("too many links")
	}
	for i := range items {
		items[i].Title = strings.TrimSpace(items[i].Title)
		items[i].URL = strings.TrimSpace(items[i].URL)
		items[i].Icon = strings.TrimSpace(items[i].Icon)
		if items[i].Title == "" {
			return fmt.Errorf("link %d: title is required", i+1)
		}
		if !validLinkURL(items[i].URL) {
			return fmt.Errorf("link %d: url must be http(s) or start with /", i+1)
		}
		if items[i].Icon == "" {
			items[i].Icon = "link"
		}
	}
	return nil
}

func validLinkURL(raw string) bool {
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidateEvents trims and checks events.
func ValidateEvents(items []HostelEvent) error {
	if len(items) > maxModuleItems {
		return errors.New("too many events")
	}
	for i := range items {
		items[i].Title = strings.TrimSpace(items[i].Title)
		if items[i].Title == "" {
			return fmt.Errorf("event %d: title is required", i+1)
		}
		if items[i].EventDate.IsZero() {
			return fmt.Errorf("event %d: event_date is required", i+1)
		}
	}
	return nil
}
