package calendar

import (
	"strings"
	"time"

	"github.com/danekja/ymanager/internal"
	calendarDatamodel "github.com/danekja/ymanager/internal/core/datamodel/calendar"
)

type Kind string

const (
	KindVacation Kind = "VACATION"
	KindSickDay  Kind = "SICK_DAY"
	KindOvertime Kind = "OVERTIME"
)

func ParseKind(raw string) (Kind, bool) {
	switch strings.ToUpper(raw) {
	case string(KindVacation):
		return KindVacation, true
	case string(KindSickDay):
		return KindSickDay, true
	case string(KindOvertime):
		return KindOvertime, true
	}
	return "", false
}

// Window is a time-of-day absence window for a vacation entry, in minutes
// since midnight. A nil window means the whole working day.
type Window struct {
	FromMinute int
	ToMinute   int
}

func (w *Window) Minutes() int {
	return w.ToMinute - w.FromMinute
}

// Entry is one calendar record: a vacation day, a sick day or an overtime
// block. The date is a civil day in the server's fixed time zone, stored
// normalized to midnight UTC.
type Entry struct {
	ID              int64
	OwnerID         int64
	Kind            Kind
	Date            time.Time
	Window          *Window
	Hours           float64
	Status          internal.Status
	ApproverID      *int64
	CreatedAt       time.Time
	StatusChangedAt time.Time
}

// FullDay reports whether the entry blocks the whole working day.
func (e *Entry) FullDay() bool {
	return e.Kind != KindOvertime && e.Window == nil
}

// Active reports whether the entry reserves or consumes balance.
func (e *Entry) Active() bool {
	return e.Status == internal.StatusPending || e.Status == internal.StatusAccepted
}

// CanTransitionTo enumerates the legal status moves: PENDING may be decided
// either way, an ACCEPTED entry may still be revoked by an approver.
func (e *Entry) CanTransitionTo(next internal.Status) bool {
	switch e.Status {
	case internal.StatusPending:
		return next == internal.StatusAccepted || next == internal.StatusRejected
	case internal.StatusAccepted:
		return next == internal.StatusRejected
	}
	return false
}

func ToDataModel(e *Entry) *calendarDatamodel.Entry {
	m := &calendarDatamodel.Entry{
		ID:              e.ID,
		OwnerID:         e.OwnerID,
		Kind:            string(e.Kind),
		Date:            e.Date,
		Hours:           e.Hours,
		Status:          string(e.Status),
		ApproverID:      e.ApproverID,
		CreatedAt:       e.CreatedAt,
		StatusChangedAt: e.StatusChangedAt,
	}
	if e.Window != nil {
		from, to := e.Window.FromMinute, e.Window.ToMinute
		m.FromMinute = &from
		m.ToMinute = &to
	}
	return m
}

func FromDataModel(m *calendarDatamodel.Entry) *Entry {
	e := &Entry{
		ID:              m.ID,
		OwnerID:         m.OwnerID,
		Kind:            Kind(m.Kind),
		Date:            NormalizeDate(m.Date),
		Hours:           m.Hours,
		Status:          internal.Status(m.Status),
		ApproverID:      m.ApproverID,
		CreatedAt:       m.CreatedAt,
		StatusChangedAt: m.StatusChangedAt,
	}
	if m.FromMinute != nil && m.ToMinute != nil {
		e.Window = &Window{FromMinute: *m.FromMinute, ToMinute: *m.ToMinute}
	}
	return e
}

func FromDataModelSlice(ms []*calendarDatamodel.Entry) []*Entry {
	result := make([]*Entry, len(ms))
	for i, m := range ms {
		result[i] = FromDataModel(m)
	}
	return result
}
