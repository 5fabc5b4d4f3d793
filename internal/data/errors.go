package data

import (
	"errors"

	"github.com/hostelhub/hostel-api/internal/core"
)

// Shared sentinel errors for data-layer repositories.
var (
	// ErrNoPassword is returned when an account exists but was provisioned through SSO only.
	ErrNoPassword = core.ErrNoPassword
	// ErrUnknownRole is returned for role values outside the admin/student set.
	ErrUnknownRole = errors.New("unknown role")
)
