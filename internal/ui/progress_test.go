package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sdvcn/vox/internal/driver"
)

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		stage  driver.Stage
		status driver.Status
		want   string
	}{
		{driver.StageParse, driver.StatusQueued, "queued"},
		{driver.StageParse, driver.StatusDone, "done"},
		{driver.StageCheck, driver.StatusError, "error"},
		{driver.StageIRGen, driver.StatusWorking, "lowering"},
	}
	for _, tt := range tests {
		if got := statusLabel(tt.stage, tt.status); got != tt.want {
			t.Errorf("statusLabel(%v, %v) = %q, want %q", tt.stage, tt.status, got, tt.want)
		}
	}
}

func TestProgressFromStageIsMonotonic(t *testing.T) {
	stages := []driver.Stage{
		driver.StageLoad, driver.StageParse, driver.StageRegister,
		driver.StageCheck, driver.StageIRGen,
	}
	prev := -1.0
	for _, s := range stages {
		got := progressFromStage(s)
		if got <= prev {
			t.Errorf("progressFromStage(%v) = %v, want > previous %v", s, got, prev)
		}
		prev = got
	}
}

func TestTruncateShortStringUnchanged(t *testing.T) {
	if got := truncate("short.vx", 20); got != "short.vx" {
		t.Errorf("truncate() = %q, want unchanged", got)
	}
}

func TestTruncateLongStringAddsEllipsis(t *testing.T) {
	got := truncate("this/is/a/very/long/path/to/a/file.vx", 10)
	if len(got) == 0 {
		t.Fatal("truncate() returned empty string")
	}
	if got == "this/is/a/very/long/path/to/a/file.vx" {
		t.Error("truncate() did not shorten a string longer than the width")
	}
}

func TestProgressModelAppliesFileEvents(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("build", []string{"a.vx", "b.vx"}, events)
	pm, ok := m.(*progressModel)
	if !ok {
		t.Fatalf("NewProgressModel returned %T, want *progressModel", m)
	}

	pm.applyEvent(driver.Event{File: "a.vx", Stage: driver.StageParse, Status: driver.StatusWorking})
	if pm.items[pm.index["a.vx"]].status != "parsing" {
		t.Errorf("item status = %q, want %q", pm.items[pm.index["a.vx"]].status, "parsing")
	}

	pm.applyEvent(driver.Event{File: "a.vx", Stage: driver.StageParse, Status: driver.StatusDone})
	if pm.items[pm.index["a.vx"]].status != "done" {
		t.Errorf("item status = %q, want %q", pm.items[pm.index["a.vx"]].status, "done")
	}

	// An event for a stage that runs over the combined item list (no File)
	// updates the overall stage label instead of any per-file item.
	pm.applyEvent(driver.Event{Stage: driver.StageCheck, Status: driver.StatusWorking})
	if pm.stageLabel != "checking" {
		t.Errorf("stageLabel = %q, want %q", pm.stageLabel, "checking")
	}
}

func TestProgressModelViewRendersFileNames(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("build", []string{"main.vx"}, events)
	view := m.View()
	if view == "" {
		t.Fatal("View() returned empty string with files present")
	}
}

func TestProgressModelUpdateDoneMsgQuits(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("build", []string{"main.vx"}, events)
	next, cmd := m.Update(doneMsg{})
	pm := next.(*progressModel)
	if !pm.done {
		t.Fatal("expected model to be marked done")
	}
	if cmd == nil {
		t.Fatal("expected a tea.Quit command, got nil")
	}
	_ = tea.Model(next)
}
