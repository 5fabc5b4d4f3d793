package auth

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	maxFullNameLen = 120
	maxShortField  = 32
)

// ProfileUpdate holds the profile fields a principal may change. Nil fields are left untouched.
type ProfileUpdate struct {
	FullName   *string `json:"full_name,omitempty"`
	RoomNumber *string `json:"room_number,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	RollNumber *string `json:"roll_number,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.FullName == nil && u.RoomNumber == nil && u.Phone == nil && u.RollNumber == nil
}

// Normalize trims whitespace from every set field.
func (u *ProfileUpdate) Normalize() {
	for _, p := range []*string{u.FullName, u.RoomNumber, u.Phone, u.RollNumber} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}

// Validate checks field lengths and that a provided full name is not blank.
func (u ProfileUpdate) Validate() error {
	if u.FullName != nil {
		name := strings.TrimSpace(*u.FullName)
		if name == "" {
			return errors.New("full_name cannot be empty")
		}
		if utf8.RuneCountInString(name) > maxFullNameLen {
			return errors.New("full_name is too long")
		}
	}
	if tooLong(u.RoomNumber) {
		return errors.New("room_number is too long")
	}
	if tooLong(u.Phone) {
		return errors.New("phone is too long")
	}
	if tooLong(u.RollNumber) {
		return errors.New("roll_number is too long")
	}
	return nil
}

func tooLong(p *string) bool {
	return p != nil && utf8.RuneCountInString(*p) > maxShortField
}
