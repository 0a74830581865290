package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Product is a menu item offered on a single calendar day.
type Product struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Category   string     `json:"category" db:"category"`
	Price      float64    `json:"price" db:"price"`
	ImageURL   string     `json:"image_url" db:"image_url"`
	Stock      int        `json:"stock" db:"stock"`
	CutoffTime *TimeOfDay `json:"cutoff_time,omitempty" db:"cutoff_time"`
	ShowDate   time.Time  `json:"show_date" db:"show_date"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// OrderableAt reports whether the product can still be ordered at the given
// instant: it is shown on that calendar day, the cutoff (if any) has not
// passed, and stock remains. The availability filter and the commit-time
// re-check in both store backends go through this single rule.
func (p *Product) OrderableAt(now time.Time) bool {
	if !SameDay(p.ShowDate, now) {
		return false
	}
	if p.CutoffTime != nil && minutesIntoDay(now) > p.CutoffTime.Minutes() {
		return false
	}
	return p.Stock > 0
}

// TimeOfDay is a wall-clock time without a date, e.g. an order cutoff.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// TimeOfDayFrom extracts the wall-clock part of a timestamp.
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns the number of minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// DateOf truncates a timestamp to its calendar day (midnight UTC), the
// canonical representation for show dates, order dates and sale dates.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func minutesIntoDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
