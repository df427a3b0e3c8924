package domain

import (
	"testing"
	"time"
)

func TestParseDayOfWeek(t *testing.T) {
	t.Parallel()
	d, err := ParseDayOfWeek("WEDNESDAY")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Weekday() != time.Wednesday {
		t.Errorf("weekday = %v", d.Weekday())
	}

	if _, err := ParseDayOfWeek("wednesday"); err == nil {
		t.Error("lowercase must not parse, persistence is by exact name")
	}
	if _, err := ParseDayOfWeek("FUNDAY"); err == nil {
		t.Error("expected error for unknown weekday")
	}
}

func TestActivityDisplayName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		key  string
		want string
	}{
		{"running", "Running"},
		{"strength_training", "Strength training"},
		{"underwater_basket_weaving", "Underwater basket weaving"},
		{"", "Workout"},
	}
	for _, tt := range tests {
		if got := ActivityDisplayName(tt.key); got != tt.want {
			t.Errorf("ActivityDisplayName(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
