package orrery

import (
	"path/filepath"
	"testing"
)

func TestRecorderWritesRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trajectory.db")
	rec, err := NewRecorder(path)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	defer rec.Close()

	bodies := []Body{testAnchor(), testPlanet("earth")}
	if err := rec.RecordTick(1, 86400, bodies); err != nil {
		t.Fatalf("RecordTick failed: %v", err)
	}
	if err := rec.RecordTick(2, 172800, bodies); err != nil {
		t.Fatalf("RecordTick failed: %v", err)
	}

	var rows int
	if err := rec.db.QueryRow(`SELECT COUNT(*) FROM bodies`).Scan(&rows); err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	if rows != 4 {
		t.Errorf("Row count = %d, want 4", rows)
	}

	var id string
	var x, mass float64
	err = rec.db.QueryRow(
		`SELECT id, x, mass FROM bodies WHERE tick = 2 AND id = 'earth'`,
	).Scan(&id, &x, &mass)
	if err != nil {
		t.Fatalf("Row query failed: %v", err)
	}
	want := testPlanet("earth")
	if x != want.Position.X() || mass != want.Mass {
		t.Errorf("Stored (x=%v, mass=%v), want (x=%v, mass=%v)", x, mass, want.Position.X(), want.Mass)
	}
}

func TestRecorderEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.db")
	rec, err := NewRecorder(path)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	defer rec.Close()

	sim := testSimulation(t)
	sim.SetRecorder(rec)
	for i := 0; i < 5; i++ {
		sim.Tick(1)
	}

	var ticks int
	if err := rec.db.QueryRow(`SELECT COUNT(DISTINCT tick) FROM bodies`).Scan(&ticks); err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	if ticks != 5 {
		t.Errorf("Distinct ticks = %d, want 5", ticks)
	}
}
