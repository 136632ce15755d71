package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{
			name:       "CPU-bound task (1.0x multiplier)",
			multiplier: 1.0,
			minExpect:  1,
			maxExpect:  availableCPU,
		},
		{
			name:       "I/O-bound task (2.0x multiplier)",
			multiplier: 2.0,
			minExpect:  1,
			maxExpect:  availableCPU * 2,
		},
		{
			name:       "With limit lower than calculated",
			multiplier: 2.0,
			limit:      2,
			minExpect:  1,
			maxExpect:  2,
		},
		{
			name:       "Very low multiplier",
			multiplier: 0.1,
			minExpect:  1,
			maxExpect:  max(1, int(float64(availableCPU)*0.1)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_POOL_WORKERS", "")

			got := Count("TEST_POOL_WORKERS", tt.multiplier, tt.limit)
			if got < tt.minExpect {
				t.Errorf("Count(%v, %d) = %d, want >= %d", tt.multiplier, tt.limit, got, tt.minExpect)
			}
			if got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, want <= %d", tt.multiplier, tt.limit, got, tt.maxExpect)
			}
		})
	}
}

func TestCountOverride(t *testing.T) {
	tests := []struct {
		name  string
		value string
		limit int
		want  int
	}{
		{"positive override", "5", 0, 5},
		{"override capped by limit", "12", 4, 4},
		{"override below limit", "3", 8, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_POOL_WORKERS", tt.value)

			if got := Count("TEST_POOL_WORKERS", 1.0, tt.limit); got != tt.want {
				t.Errorf("Count() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOverride(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		want   int
		wantOK bool
	}{
		{"unset", "", 0, false},
		{"valid", "7", 7, true},
		{"zero", "0", 0, false},
		{"negative", "-2", 0, false},
		{"not a number", "many", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_POOL_WORKERS", tt.value)

			got, ok := Override("TEST_POOL_WORKERS")
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Override() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if _, ok := Override(""); ok {
		t.Error("Override(\"\") reported a value")
	}
}

func TestPoolsUseTheirOwnVariable(t *testing.T) {
	t.Setenv(IndexWorkersEnv, "6")
	t.Setenv(RenderWorkersEnv, "")

	if got := ForIndex(0); got != 6 {
		t.Errorf("ForIndex(0) = %d, want 6", got)
	}
	if got := ForRender(0); got > runtime.GOMAXPROCS(0) {
		t.Errorf("ForRender(0) = %d, want <= %d", got, runtime.GOMAXPROCS(0))
	}

	t.Setenv(RenderWorkersEnv, "3")
	if got := ForRender(0); got != 3 {
		t.Errorf("ForRender(0) = %d, want 3", got)
	}
	if got := ForIndex(2); got != 2 {
		t.Errorf("ForIndex(2) = %d, want 2", got)
	}
}
