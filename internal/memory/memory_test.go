package memory

import (
	"context"
	"errors"
	"runtime/debug"
	"testing"
	"time"
)

func testMonitor(limit int64) *Monitor {
	cfg := DefaultConfig()
	cfg.LimitBytes = limit
	return NewMonitor(cfg)
}

func TestMonitorPausesAndResumes(t *testing.T) {
	m := testMonitor(1000)

	tests := []struct {
		name   string
		alloc  uint64
		paused bool
	}{
		{"below resume mark", 500, false},
		{"between marks stays running", 800, false},
		{"at pause mark", 850, true},
		{"between marks stays paused", 750, true},
		{"below resume mark resumes", 600, false},
	}

	for _, tt := range tests {
		m.observe(tt.alloc)
		if got := m.IsPaused(); got != tt.paused {
			t.Errorf("%s: IsPaused() = %v, want %v", tt.name, got, tt.paused)
		}
	}

	if got := m.Usage(); got != 0.6 {
		t.Errorf("Usage() = %v, want 0.6", got)
	}
}

func TestMonitorWait(t *testing.T) {
	m := testMonitor(1000)

	if err := m.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() while running = %v, want nil", err)
	}

	m.observe(900)
	done := make(chan error, 1)
	go func() { done <- m.Wait(context.Background()) }()

	select {
	case err := <-done:
		t.Fatalf("Wait() returned %v while paused", err)
	case <-time.After(20 * time.Millisecond):
	}

	m.observe(100)
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Wait() = %v, want nil after resume", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait() did not return after resume")
	}
}

func TestMonitorWaitHonoursContextAndStop(t *testing.T) {
	m := testMonitor(1000)
	m.observe(950)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := m.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() = %v, want context.DeadlineExceeded", err)
	}

	m.Stop()
	m.Stop()
	if err := m.Wait(context.Background()); err != nil {
		t.Errorf("Wait() after Stop = %v, want nil", err)
	}
}

func TestMonitorWithoutLimit(t *testing.T) {
	previous := debug.SetMemoryLimit(-1)
	debug.SetMemoryLimit(1<<63 - 1)
	t.Cleanup(func() { debug.SetMemoryLimit(previous) })

	m := testMonitor(0)
	m.observe(1 << 40)
	if m.IsPaused() {
		t.Error("IsPaused() = true without a limit")
	}
	if m.Usage() != 0 {
		t.Errorf("Usage() = %v, want 0", m.Usage())
	}
	m.Start()
	m.Stop()
}

func TestConfigureFromEnv(t *testing.T) {
	previous := debug.SetMemoryLimit(-1)
	t.Cleanup(func() { debug.SetMemoryLimit(previous) })

	tests := []struct {
		name       string
		limit      string
		ratio      string
		configured bool
		source     string
		want       int64
	}{
		{"not set", "", "", false, "none", 0},
		{"invalid limit", "lots", "", false, "none", 0},
		{"default ratio", "1000000000", "", true, "MEMORY_LIMIT", 800000000},
		{"custom ratio", "1000000000", "0.5", true, "MEMORY_LIMIT", 500000000},
		{"ratio out of range", "1000000000", "1.5", true, "MEMORY_LIMIT", 800000000},
		{"ratio not a number", "1000000000", "half", true, "MEMORY_LIMIT", 800000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GOMEMLIMIT", "")
			t.Setenv("MEMORY_LIMIT", tt.limit)
			t.Setenv("MEMORY_RATIO", tt.ratio)

			got := ConfigureFromEnv()
			if got.Configured != tt.configured || got.Source != tt.source || got.GoMemLimit != tt.want {
				t.Errorf("ConfigureFromEnv() = %+v, want configured=%v source=%s limit=%d",
					got, tt.configured, tt.source, tt.want)
			}
			if tt.configured && debug.SetMemoryLimit(-1) != tt.want {
				t.Errorf("runtime memory limit = %d, want %d", debug.SetMemoryLimit(-1), tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1 << 20, "1.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
