package calendar_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/danekja/ymanager/internal"
	"github.com/danekja/ymanager/internal/calendar"
)

var _ = Describe("Ledger", func() {
	var ledger calendar.Ledger

	BeforeEach(func() {
		ledger = calendar.NewLedger(8)
	})

	vacationOn := func(date string, status internal.Status, window *calendar.Window) *calendar.Entry {
		d, err := calendar.ParseDate(date)
		Expect(err).NotTo(HaveOccurred())
		return &calendar.Entry{Kind: calendar.KindVacation, Date: d, Status: status, Window: window}
	}

	Describe("DayFraction", func() {
		It("counts a whole-day entry as one full day", func() {
			e := vacationOn("2026/06/01", internal.StatusAccepted, nil)
			Expect(ledger.DayFraction(e)).To(Equal(1.0))
		})

		It("converts a window at half-hour granularity", func() {
			// 09:00-13:00 is four hours of an eight-hour day
			e := vacationOn("2026/06/01", internal.StatusAccepted, &calendar.Window{FromMinute: 9 * 60, ToMinute: 13 * 60})
			Expect(ledger.DayFraction(e)).To(Equal(0.5))
		})

		It("caps an oversized window at one working day", func() {
			// 00:00-23:30 is longer than the eight-hour day
			e := vacationOn("2026/06/01", internal.StatusAccepted, &calendar.Window{FromMinute: 0, ToMinute: 1410})
			Expect(ledger.DayFraction(e)).To(Equal(1.0))
		})

		It("rounds half-hours half to even", func() {
			// 45 minutes is 1.5 half-hours, rounded to 2 = one hour
			short := vacationOn("2026/06/01", internal.StatusAccepted, &calendar.Window{FromMinute: 600, ToMinute: 645})
			Expect(ledger.DayFraction(short)).To(Equal(0.125))

			// 75 minutes is 2.5 half-hours, also rounded to 2
			longer := vacationOn("2026/06/01", internal.StatusAccepted, &calendar.Window{FromMinute: 600, ToMinute: 675})
			Expect(ledger.DayFraction(longer)).To(Equal(0.125))
		})
	})

	Describe("RemainingVacation", func() {
		It("subtracts both pending and accepted vacation entries", func() {
			entries := []*calendar.Entry{
				vacationOn("2026/06/01", internal.StatusAccepted, nil),
				vacationOn("2026/06/02", internal.StatusPending, nil),
				vacationOn("2026/06/03", internal.StatusRejected, nil),
			}
			Expect(ledger.RemainingVacation(20, entries, nil)).To(Equal(18.0))
		})

		It("ignores entries after the asOf cutoff", func() {
			cutoff, err := calendar.ParseDate("2026/06/01")
			Expect(err).NotTo(HaveOccurred())
			entries := []*calendar.Entry{
				vacationOn("2026/06/01", internal.StatusAccepted, nil),
				vacationOn("2026/06/15", internal.StatusAccepted, nil),
			}
			Expect(ledger.RemainingVacation(20, entries, &cutoff)).To(Equal(19.0))
		})

		It("ignores sick days and overtime", func() {
			d, _ := calendar.ParseDate("2026/06/01")
			entries := []*calendar.Entry{
				{Kind: calendar.KindSickDay, Date: d, Status: internal.StatusAccepted},
				{Kind: calendar.KindOvertime, Date: d, Status: internal.StatusAccepted, Hours: 3},
			}
			Expect(ledger.RemainingVacation(20, entries, nil)).To(Equal(20.0))
		})
	})

	Describe("overtime sums", func() {
		var entries []*calendar.Entry

		BeforeEach(func() {
			d, _ := calendar.ParseDate("2026/06/01")
			entries = []*calendar.Entry{
				{Kind: calendar.KindOvertime, Date: d, Status: internal.StatusAccepted, Hours: 2},
				{Kind: calendar.KindOvertime, Date: d.AddDate(0, 0, 1), Status: internal.StatusPending, Hours: 3},
				{Kind: calendar.KindOvertime, Date: d.AddDate(0, 0, 2), Status: internal.StatusRejected, Hours: 5},
			}
		})

		It("takes only accepted hours into OvertimeTaken", func() {
			Expect(ledger.OvertimeTaken(entries)).To(Equal(2.0))
		})

		It("reserves pending hours too in OvertimeReserved", func() {
			Expect(ledger.OvertimeReserved(entries)).To(Equal(5.0))
		})
	})

	It("falls back to an eight-hour day for a non-positive configuration", func() {
		l := calendar.NewLedger(0)
		Expect(l.WorkingDayHours).To(Equal(8.0))
	})
})

var _ = Describe("Dates", func() {
	It("parses and formats the yyyy/MM/dd wire format", func() {
		d, err := calendar.ParseDate("2026/02/28")
		Expect(err).NotTo(HaveOccurred())
		Expect(calendar.FormatDate(d)).To(Equal("2026/02/28"))
	})

	It("rejects malformed dates", func() {
		_, err := calendar.ParseDate("28.2.2026")
		Expect(err).To(HaveOccurred())
	})

	It("parses and formats HH:mm clocks as minutes since midnight", func() {
		m, err := calendar.ParseClock("09:30")
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(Equal(570))
		Expect(calendar.FormatClock(570)).To(Equal("09:30"))
	})

	It("normalizes dates to midnight UTC", func() {
		loc, err := time.LoadLocation("Europe/Prague")
		Expect(err).NotTo(HaveOccurred())
		d := calendar.NormalizeDate(time.Date(2026, 6, 1, 23, 45, 0, 0, loc))
		Expect(d.Hour()).To(Equal(0))
		Expect(d.Location()).To(Equal(time.UTC))
		Expect(d.Day()).To(Equal(1))
	})
})
