package calendar

import (
	"math"
	"time"

	"github.com/danekja/ymanager/internal"
)

// Ledger is pure arithmetic over a user's policy and calendar entries. It
// never writes; the calendar and approval services consult it before letting
// an entry reserve or consume balance.
type Ledger struct {
	WorkingDayHours float64
}

func NewLedger(workingDayHours float64) Ledger {
	if workingDayHours <= 0 {
		workingDayHours = 8
	}
	return Ledger{WorkingDayHours: workingDayHours}
}

// DayFraction converts an entry to its share of a working day. Whole-day
// entries count 1.0; windowed ones convert the window at half-hour
// granularity, rounding half to even.
func (l Ledger) DayFraction(e *Entry) float64 {
	if e.Window == nil {
		return 1.0
	}
	halfHours := math.RoundToEven(float64(e.Window.Minutes()) / 30.0)
	// one civil day never consumes more than one working day
	return math.Min((halfHours/2.0)/l.WorkingDayHours, 1.0)
}

// RemainingVacation computes the vacation balance left after every PENDING
// and ACCEPTED vacation entry up to asOf. PENDING entries reserve balance so
// that approvals cannot overspend. A nil asOf considers all entries.
func (l Ledger) RemainingVacation(vacationDaysTotal float64, entries []*Entry, asOf *time.Time) float64 {
	remaining := vacationDaysTotal
	for _, e := range entries {
		if e.Kind != KindVacation || !e.Active() {
			continue
		}
		if asOf != nil && e.Date.After(*asOf) {
			continue
		}
		remaining -= l.DayFraction(e)
	}
	return remaining
}

// OvertimeTaken sums the hours of ACCEPTED overtime entries.
func (l Ledger) OvertimeTaken(entries []*Entry) float64 {
	var taken float64
	for _, e := range entries {
		if e.Kind == KindOvertime && e.Status == internal.StatusAccepted {
			taken += e.Hours
		}
	}
	return taken
}

// OvertimeReserved sums the hours of PENDING and ACCEPTED overtime entries,
// the figure the pre-check compares against the budget.
func (l Ledger) OvertimeReserved(entries []*Entry) float64 {
	var reserved float64
	for _, e := range entries {
		if e.Kind == KindOvertime && e.Active() {
			reserved += e.Hours
		}
	}
	return reserved
}
