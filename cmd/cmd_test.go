package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"photo-index/internal/indexer"
	"photo-index/internal/startup"

	"github.com/spf13/cobra"
)

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"serve": false, "index": false, "cache": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}

	sub := map[string]bool{}
	for _, c := range indexCmd.Commands() {
		sub[c.Name()] = true
	}
	for _, name := range []string{"add", "enrich", "history"} {
		if !sub[name] {
			t.Errorf("index subcommand %q not registered", name)
		}
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	t.Setenv("MEDIA_DIR", "/from-env")
	t.Setenv("CACHE_DIR", "/cache-env")
	t.Setenv("INDEX_WORKERS", "")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("media-dir", "", "")
	cmd.Flags().String("cache-dir", "", "")
	cmd.Flags().Int("workers", 0, "")
	if err := cmd.Flags().Parse([]string{"--media-dir", "/from-flag", "--workers", "3"}); err != nil {
		t.Fatal(err)
	}

	if err := applyFlagOverrides(cmd); err != nil {
		t.Fatalf("applyFlagOverrides() error = %v", err)
	}

	tests := map[string]string{
		"MEDIA_DIR":     "/from-flag",
		"CACHE_DIR":     "/cache-env",
		"INDEX_WORKERS": "3",
	}
	for env, want := range tests {
		if got := os.Getenv(env); got != want {
			t.Errorf("%s = %q, want %q", env, got, want)
		}
	}
}

func TestMustGetPanicsOnUnknownFlag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("mustGetBool() did not panic for an undefined flag")
		}
	}()
	mustGetBool(&cobra.Command{Use: "test"}, "missing")
}

func TestOpenObjectStore(t *testing.T) {
	tests := []struct {
		name     string
		backend  string
		wantName string
	}{
		{name: "local", backend: startup.StoreLocal, wantName: "local"},
		{name: "memory", backend: startup.StoreMemory, wantName: "memory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &startup.Config{ObjectStore: tt.backend, LocalStoreDir: filepath.Join(t.TempDir(), "objects")}
			store, err := openObjectStore(context.Background(), cfg)
			if err != nil {
				t.Fatalf("openObjectStore() error = %v", err)
			}
			if store.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", store.Name(), tt.wantName)
			}
		})
	}
}

func TestNewCollaboratorsDisabled(t *testing.T) {
	cfg := &startup.Config{GeocoderURL: startup.GeocoderDisabled}

	collab, err := newCollaborators(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("newCollaborators() error = %v", err)
	}
	if collab.Tags == nil {
		t.Error("Tags reader missing")
	}
	if collab.Location != nil {
		t.Error("Location resolver set with geocoding disabled")
	}
	if collab.Rotation != nil {
		t.Error("Rotation inferrer set without a face detector")
	}
}

func TestNewCollaboratorsFaceDetector(t *testing.T) {
	cfg := &startup.Config{GeocoderURL: startup.GeocoderDisabled, FaceDetectorURL: "http://faces:5000"}

	collab, err := newCollaborators(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("newCollaborators() error = %v", err)
	}
	if collab.Rotation == nil {
		t.Error("Rotation inferrer missing with a face detector configured")
	}
}

func TestBuildProgressIgnoresUncountedWalk(t *testing.T) {
	update := newBuildProgress("test")
	// Must not panic before the total is known or after the build ends.
	update(indexer.Progress{Running: true})
	update(indexer.Progress{Running: true, Total: 2, Processed: 1})
	update(indexer.Progress{Running: false, Total: 2, Processed: 2})
}
