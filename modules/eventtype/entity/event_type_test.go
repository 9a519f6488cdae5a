package entity

import (
	"database/sql"
	"testing"
	"time"
)

func TestInPeriodRollingCalendarDays(t *testing.T) {
	et := &EventType{
		PeriodType:              PeriodRolling,
		PeriodDays:              sql.NullInt32{Int32: 3, Valid: true},
		PeriodCountCalendarDays: true,
	}
	now := time.Date(2024, 5, 3, 15, 0, 0, 0, time.UTC) // Friday

	if !et.InPeriod(time.Date(2024, 5, 6, 23, 0, 0, 0, time.UTC), now) {
		t.Fatal("last day of the window should be bookable")
	}
	if et.InPeriod(time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC), now) {
		t.Fatal("day after the window should not be bookable")
	}
}

func TestInPeriodRollingBusinessDaysSkipsWeekend(t *testing.T) {
	et := &EventType{
		PeriodType: PeriodRolling,
		PeriodDays: sql.NullInt32{Int32: 1, Valid: true},
	}
	now := time.Date(2024, 5, 3, 15, 0, 0, 0, time.UTC) // Friday

	if !et.InPeriod(time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC), now) {
		t.Fatal("Monday is one business day after Friday")
	}
	if et.InPeriod(time.Date(2024, 5, 7, 9, 0, 0, 0, time.UTC), now) {
		t.Fatal("Tuesday is outside a one business day window")
	}
}

func TestInPeriodRange(t *testing.T) {
	et := &EventType{
		PeriodType:      PeriodRange,
		PeriodStartDate: sql.NullTime{Time: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Valid: true},
		PeriodEndDate:   sql.NullTime{Time: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), Valid: true},
	}
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start time.Time
		want  bool
	}{
		{"before range", time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC), false},
		{"first day", time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), true},
		{"last day", time.Date(2024, 6, 30, 22, 0, 0, 0, time.UTC), true},
		{"after range", time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := et.InPeriod(tt.start, now); got != tt.want {
				t.Fatalf("InPeriod(%s) = %v, want %v", tt.start, got, tt.want)
			}
		})
	}
}

func TestConfirmationThresholdDuration(t *testing.T) {
	tests := []struct {
		in   ConfirmationThreshold
		want time.Duration
	}{
		{ConfirmationThreshold{Amount: 30, Unit: "minutes"}, 30 * time.Minute},
		{ConfirmationThreshold{Amount: 2, Unit: "hours"}, 2 * time.Hour},
		{ConfirmationThreshold{Amount: 1, Unit: "days"}, 24 * time.Hour},
	}
	for _, tt := range tests {
		if got := tt.in.Duration(); got != tt.want {
			t.Errorf("%+v.Duration() = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFrequencyDefaultsToLength(t *testing.T) {
	et := &EventType{Length: 45}
	if et.Frequency() != 45 {
		t.Fatalf("Frequency() = %d, want 45", et.Frequency())
	}
	et.SlotInterval = sql.NullInt32{Int32: 15, Valid: true}
	if et.Frequency() != 15 {
		t.Fatalf("Frequency() = %d, want 15", et.Frequency())
	}
}

func TestNullableJSONColumnsScanNull(t *testing.T) {
	var c ConfirmationThreshold
	if err := c.Scan(nil); err != nil || c.Valid() {
		t.Fatalf("Scan(nil) = %v, valid %v", err, c.Valid())
	}
	var r Recurrence
	if err := r.Scan([]byte(`{"freq":"weekly","interval":1,"count":4}`)); err != nil {
		t.Fatal(err)
	}
	if r.Freq != FreqWeekly || r.Count != 4 {
		t.Fatalf("unexpected recurrence %+v", r)
	}
	if v, err := (Recurrence{}).Value(); err != nil || v != nil {
		t.Fatalf("empty recurrence should store NULL, got %v, %v", v, err)
	}
}
