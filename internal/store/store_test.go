package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAddAndRetrieveFlashes(t *testing.T) {
	tmp := t.TempDir()
	s := New(tmp)

	record := FlashRecord{
		Device:    "LPC1343",
		Timestamp: time.Now(),
		Success:   true,
		Outcome:   "programmed",
		Duration:  "1.2s",
		HexFiles:  []string{"/work/build/app.hex"},
	}

	if err := s.AddFlash(record); err != nil {
		t.Fatalf("AddFlash failed: %v", err)
	}

	flashes, err := s.Flashes()
	if err != nil {
		t.Fatalf("Flashes failed: %v", err)
	}
	if len(flashes) != 1 {
		t.Fatalf("expected 1 flash, got %d", len(flashes))
	}
	if flashes[0].Device != "LPC1343" {
		t.Errorf("expected device=LPC1343, got=%s", flashes[0].Device)
	}
	if _, err := uuid.Parse(flashes[0].ID); err != nil {
		t.Errorf("expected generated uuid, got %q: %v", flashes[0].ID, err)
	}
}

func TestAddKeepsExplicitID(t *testing.T) {
	s := New(t.TempDir())

	s.AddErase(EraseRecord{ID: "erase-1", Device: "LPC1343", Timestamp: time.Now(), Success: true})

	erases, _ := s.Erases()
	if len(erases) != 1 || erases[0].ID != "erase-1" {
		t.Fatalf("expected explicit id to be kept, got %+v", erases)
	}
}

func TestAddMultipleRecords(t *testing.T) {
	tmp := t.TempDir()
	s := New(tmp)

	s.AddConnection(ConnectionRecord{Device: "LPC1343", Timestamp: time.Now(), Connected: true, Duration: "0.4s"})
	s.AddConnection(ConnectionRecord{Device: "LPC1343", Timestamp: time.Now(), Connected: false, Duration: "5s"})
	s.AddFlash(FlashRecord{Device: "LPC1343", Timestamp: time.Now(), Success: false, Outcome: "failed", Duration: "2s"})
	s.AddMonitorSession(MonitorSession{Port: "/dev/ttyACM0", BaudRate: 115200, Timestamp: time.Now()})

	conns, _ := s.Connections()
	if len(conns) != 2 {
		t.Errorf("expected 2 connections, got %d", len(conns))
	}
	if conns[0].ID == conns[1].ID {
		t.Errorf("expected distinct ids, got %s twice", conns[0].ID)
	}

	flashes, _ := s.Flashes()
	if len(flashes) != 1 {
		t.Errorf("expected 1 flash, got %d", len(flashes))
	}

	sessions, _ := s.MonitorSessions()
	if len(sessions) != 1 {
		t.Errorf("expected 1 monitor session, got %d", len(sessions))
	}
}

func TestEmptyStore(t *testing.T) {
	tmp := t.TempDir()
	s := New(tmp)

	flashes, err := s.Flashes()
	if err != nil {
		t.Fatalf("Flashes on empty store failed: %v", err)
	}
	if len(flashes) != 0 {
		t.Errorf("expected 0 flashes, got %d", len(flashes))
	}
}
