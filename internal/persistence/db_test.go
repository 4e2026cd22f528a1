package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/worldhistory/internal/calendar"
	"github.com/talgya/worldhistory/internal/engine"
	"github.com/talgya/worldhistory/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testSnapshot(started time.Time) engine.BoundarySnapshot {
	return engine.BoundarySnapshot{
		RunID:         uuid.New(),
		StartedAt:     started,
		StepsComplete: 3,
		StepsTotal:    10,
		TickSeconds:   []float64{0.1, 0.2, 0.3},
		Entities:      []int{5, 5, 6},
		People:        []int{3, 3, 4},
		Places:        []int{2, 2, 2},
	}
}

func TestSaveRunRoundTrip(t *testing.T) {
	db := openTestDB(t)
	cfg := world.DefaultSimulationConfig(99)
	cfg.SetName("Erde")

	older := testSnapshot(time.Now().Add(-time.Hour))
	newer := testSnapshot(time.Now())
	for _, snap := range []engine.BoundarySnapshot{older, newer} {
		if err := db.SaveRun(&cfg, snap); err != nil {
			t.Fatal(err)
		}
	}
	// Saving again replaces rather than duplicates.
	if err := db.SaveRun(&cfg, newer); err != nil {
		t.Fatal(err)
	}

	runs, err := db.RecentRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if runs[0].ID != newer.RunID.String() {
		t.Errorf("newest run = %s, want %s", runs[0].ID, newer.RunID)
	}
	if runs[0].Name != "Erde" || runs[0].Seed != 99 || runs[0].Timespan != "months" {
		t.Errorf("run = %+v", runs[0])
	}

	samples, err := db.RunSamples(newer.RunID.String())
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 3 {
		t.Fatalf("samples = %d, want 3", len(samples))
	}
	if samples[2].Entities != 6 || samples[2].People != 4 || samples[2].TickSeconds != 0.3 {
		t.Errorf("last sample = %+v", samples[2])
	}
}

func TestSaveWorldState(t *testing.T) {
	db := openTestDB(t)
	s := world.NewStore(world.DefaultSimulationConfig(4))
	s.SpawnPerson(world.PersonBundle{Name: "Ada", Age: calendar.FromYears(2)})
	s.SpawnPerson(world.PersonBundle{Name: "Bram", State: world.Dead})
	s.SpawnSettlement("Ashford", world.Settlement{Population: 50, Coord: world.HexCoord{Q: 1, R: 2}})

	snap := testSnapshot(time.Now())
	if err := db.SaveWorldState(s, snap); err != nil {
		t.Fatal(err)
	}

	people, err := db.RunPeople(snap.RunID.String())
	if err != nil {
		t.Fatal(err)
	}
	if len(people) != 2 {
		t.Fatalf("people = %d, want 2", len(people))
	}
	if people[0].Name != "Ada" || people[0].AgeDays != calendar.DaysPerYear*2 || people[0].Living != "alive" {
		t.Errorf("first person = %+v", people[0])
	}
	if people[0].Health.Valid {
		t.Error("uncomputed health stored as a number")
	}
	if people[1].Living != "dead" {
		t.Errorf("second person living = %q", people[1].Living)
	}

	last, err := db.GetMeta("last_run")
	if err != nil {
		t.Fatal(err)
	}
	if last != snap.RunID.String() {
		t.Errorf("last_run = %q", last)
	}
}

func TestGetMetaMissing(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.GetMeta("nothing"); err == nil {
		t.Error("GetMeta on missing key returned no error")
	}
}
