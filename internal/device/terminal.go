package device

import (
	"context"
	"time"

	"github.com/wardtrack/wardtrack-backend/internal/attendance/reconcile"
)

// Terminal is the boundary to the vendor SDK. Implementations own the
// socket protocol; the poller only sees users and attendance records.
type Terminal interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Users(ctx context.Context) ([]User, error)
	Attendances(ctx context.Context) ([]Record, error)
}

// User is an account stored on the terminal
type User struct {
	UserID string
	Name   string
}

// Record is a raw attendance event as read from the terminal. Timestamp is
// in the terminal's local clock; the poller normalizes it before anything
// downstream sees it.
type Record struct {
	UserID    string
	Timestamp time.Time
	Status    int
}

// ZKTeco attendance status codes
const (
	statusCheckIn     = 0
	statusCheckOut    = 1
	statusBreakOut    = 2
	statusBreakIn     = 3
	statusOvertimeIn  = 4
	statusOvertimeOut = 5
)

// Kind maps the device status code to a punch kind. Unknown codes default
// to check-in, matching how the terminals report legacy event types.
func (r Record) Kind() reconcile.PunchKind {
	switch r.Status {
	case statusCheckOut:
		return reconcile.PunchCheckOut
	case statusBreakOut:
		return reconcile.PunchBreakOut
	case statusBreakIn:
		return reconcile.PunchBreakIn
	case statusOvertimeIn:
		return reconcile.PunchOvertimeIn
	case statusOvertimeOut:
		return reconcile.PunchOvertimeOut
	default:
		return reconcile.PunchCheckIn
	}
}
