package engine

import (
	"slices"
	"testing"

	"github.com/talgya/worldhistory/internal/world"
)

func TestScheduleFor(t *testing.T) {
	tests := []struct {
		dir  world.HistoryDirection
		ts   world.Timespan
		want []string
	}{
		{world.Forwards, world.Days, []string{"age", "health", "affliction-progress", "death"}},
		{world.Forwards, world.Months, []string{"age", "health", "affliction-progress"}},
		{world.Backwards, world.Days, []string{"health"}},
		{world.Backwards, world.Months, []string{"health", "death"}},
	}
	for _, tt := range tests {
		t.Run(tt.dir.String()+"/"+tt.ts.String(), func(t *testing.T) {
			got := ScheduleFor(tt.dir, tt.ts).Names()
			if !slices.Equal(got, tt.want) {
				t.Errorf("ScheduleFor = %v, want %v", got, tt.want)
			}
		})
	}
}
