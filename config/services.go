package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP API.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeNoticeSweeper runs the job that clears stale "new" badges from notices.
	ServiceModeNoticeSweeper ServiceMode = "notice-sweeper"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeNoticeSweeper}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for part := range strings.SplitSeq(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeNoticeSweeper:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: http, notice-sweeper)", serviceName)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// NoticeSweeperConfig contains notice sweeper configuration.
type NoticeSweeperConfig struct {
	// Interval is the time between sweeps.
	Interval time.Duration `env:"NOTICE_SWEEP_INTERVAL" envDefault:"1h"`

	// Freshness is how long a notice keeps its "new" badge.
	Freshness time.Duration `env:"NOTICE_FRESHNESS" envDefault:"168h"` // 7 days
}

// Sanitize applies guardrails to notice sweeper configuration values.
func (n *NoticeSweeperConfig) Sanitize() {
	if n.Interval < time.Minute {
		n.Interval = time.Minute
	}
	if n.Freshness < time.Hour {
		n.Freshness = time.Hour
	}
}
