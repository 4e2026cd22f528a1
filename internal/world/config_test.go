package world

import (
	"errors"
	"testing"
)

func TestConfigLock(t *testing.T) {
	cfg := DefaultSimulationConfig(7)
	if cfg.Direction() != Forwards || cfg.Timespan() != Months {
		t.Fatalf("defaults = %v/%v", cfg.Direction(), cfg.Timespan())
	}
	if cfg.IncrementsForCompletion != MinSimSteps {
		t.Errorf("IncrementsForCompletion = %d, want %d", cfg.IncrementsForCompletion, MinSimSteps)
	}

	if err := cfg.SetTimespan(Days); err != nil {
		t.Fatal(err)
	}
	cfg.LockedIn = true

	for name, err := range map[string]error{
		"name":      cfg.SetName("x"),
		"seed":      cfg.SetSeed(1),
		"direction": cfg.SetDirection(Backwards),
		"timespan":  cfg.SetTimespan(Months),
	} {
		if !errors.Is(err, ErrConfigLocked) {
			t.Errorf("set %s after lock = %v, want ErrConfigLocked", name, err)
		}
	}
	if cfg.Timespan() != Days || cfg.Seed() != 7 {
		t.Errorf("locked values changed: %v seed=%d", cfg.Timespan(), cfg.Seed())
	}

	if err := cfg.SetIncrementsForCompletion(40); err != nil {
		t.Errorf("raising steps after lock = %v", err)
	}
}

func TestConfigSteps(t *testing.T) {
	cfg := DefaultSimulationConfig(1)
	if err := cfg.SetIncrementsForCompletion(MinSimSteps - 1); !errors.Is(err, ErrInvalidSteps) {
		t.Errorf("below minimum = %v", err)
	}
	cfg.IncrementsCompleted = 25
	if err := cfg.SetIncrementsForCompletion(20); !errors.Is(err, ErrInvalidSteps) {
		t.Errorf("below completed = %v", err)
	}
	if !cfg.Complete() {
		t.Error("Complete() = false with completed beyond target")
	}
}

func TestParseDirectionTimespan(t *testing.T) {
	if d, err := ParseDirection("backwards"); err != nil || d != Backwards {
		t.Errorf("ParseDirection = %v, %v", d, err)
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("ParseDirection accepted sideways")
	}
	if ts, err := ParseTimespan("days"); err != nil || ts != Days {
		t.Errorf("ParseTimespan = %v, %v", ts, err)
	}
	if _, err := ParseTimespan("weeks"); err == nil {
		t.Error("ParseTimespan accepted weeks")
	}
}
