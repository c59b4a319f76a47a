package cycle

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout        = "2006-01-02"
	DisplayLayout     = "Monday, January 2"
	DefaultLength     = 28
	DefaultDueSoonDay = 3
	MaxLength         = 366

	secondsPerDay = 24 * 60 * 60
)

var (
	ErrInvalidCycleLength = errors.New("cycle length out of range")
	ErrInvalidDate        = errors.New("invalid cycle start date")
)

type Prediction struct {
	// DaysUntil is signed: negative means the predicted date has passed.
	DaysUntil      int
	NextPeriodDate time.Time
	DueSoon        bool
}

// Late reports whether the predicted start has already passed.
func (p Prediction) Late() bool {
	return p.DaysUntil < 0
}

// DueToday reports whether the predicted start is today.
func (p Prediction) DueToday() bool {
	return p.DaysUntil == 0
}

// FormattedDate renders NextPeriodDate as e.g. "Friday, October 23".
func (p Prediction) FormattedDate() string {
	return p.NextPeriodDate.Format(DisplayLayout)
}

// Summary is the one-line status shown on the dashboard.
func (p Prediction) Summary() string {
	switch {
	case p.Late():
		if p.DaysUntil == -1 {
			return "late by 1 day"
		}
		return fmt.Sprintf("late by %d days", -p.DaysUntil)
	case p.DueToday():
		return "due today"
	case p.DaysUntil == 1:
		return "in 1 day"
	default:
		return fmt.Sprintf("in %d days", p.DaysUntil)
	}
}

type Predictor struct {
	dueSoonDays int
	now         func() time.Time
}

// NewPredictor returns a Predictor that flags a cycle as due soon when exactly
// dueSoonDays remain. A nil now uses time.Now.
func NewPredictor(dueSoonDays int, now func() time.Time) *Predictor {
	if now == nil {
		now = time.Now
	}
	return &Predictor{dueSoonDays: dueSoonDays, now: now}
}

func (p *Predictor) DueSoonDays() int {
	return p.dueSoonDays
}

// Predict computes the next cycle start relative to the predictor's clock.
func (p *Predictor) Predict(lastPeriodStart time.Time, cycleLength int) (Prediction, error) {
	pred, err := Predict(lastPeriodStart, cycleLength, p.now())
	if err != nil {
		return Prediction{}, err
	}
	pred.DueSoon = pred.DaysUntil == p.dueSoonDays
	return pred, nil
}

// Predict computes the next cycle start and the signed number of calendar
// days from now until it. Both dates are taken at midnight in now's location,
// so the result is the ceiling of the day difference. DueSoon uses
// DefaultDueSoonDay.
func Predict(lastPeriodStart time.Time, cycleLength int, now time.Time) (Prediction, error) {
	if cycleLength <= 0 || cycleLength > MaxLength {
		return Prediction{}, fmt.Errorf("%w: got %d, want 1..%d", ErrInvalidCycleLength, cycleLength, MaxLength)
	}
	if lastPeriodStart.IsZero() {
		return Prediction{}, ErrInvalidDate
	}

	loc := now.Location()
	y, m, d := lastPeriodStart.Date()
	next := time.Date(y, m, d+cycleLength, 0, 0, 0, 0, loc)
	today := Midnight(now)

	days := calendarDays(today, next)

	return Prediction{
		DaysUntil:      days,
		NextPeriodDate: next,
		DueSoon:        days == DefaultDueSoonDay,
	}, nil
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w '%s': expected YYYY-MM-DD", ErrInvalidDate, s)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// Midnight truncates t to the start of its day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// calendarDays counts whole days between two midnights, ignoring DST shifts.
func calendarDays(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int((b.Unix() - a.Unix()) / secondsPerDay)
}
