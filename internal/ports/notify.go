package ports

import (
	"context"

	"github.com/hostelhub/hostel-api/internal/observability/notify"
)

// StaffNotifier raises an event for hostel staff. Implementations must not block the caller.
type StaffNotifier interface {
	Notify(ctx context.Context, ev notify.Event)
}
