package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/kestrel/internal/config"
)

func TestContentHasher(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(path, []byte("package a"), 0o644))

	h := newContentHasher()

	assert.True(t, h.changed(path), "first sighting counts as a change")
	assert.False(t, h.changed(path), "identical content does not")

	require.NoError(t, os.WriteFile(path, []byte("package a // edited"), 0o644))
	assert.True(t, h.changed(path))

	require.NoError(t, os.Remove(path))
	assert.True(t, h.changed(path), "deletion of a tracked file counts once")
	assert.False(t, h.changed(path), "an untracked unreadable file does not")
}

func TestMatchesWatch(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Watch.Paths = []string{"**/*.go", "kestrel.toml"}
	root := filepath.Join(string(filepath.Separator), "work")

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "go file at root", path: filepath.Join(root, "main.go"), want: true},
		{name: "nested go file", path: filepath.Join(root, "engine", "env.go"), want: true},
		{name: "config file", path: filepath.Join(root, "kestrel.toml"), want: true},
		{name: "unrelated extension", path: filepath.Join(root, "notes.txt"), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, matchesWatch(cfg, root, tt.path))
		})
	}
}

func TestQuietPeriod_ElapsesWithoutEvents(t *testing.T) {
	t.Parallel()

	changed := make(chan string)
	ok := quietPeriod(context.Background(), changed, 5*time.Millisecond)
	assert.True(t, ok)
}

func TestQuietPeriod_AbsorbsBurst(t *testing.T) {
	t.Parallel()

	changed := make(chan string, 4)
	changed <- "a.go"
	changed <- "b.go"

	ok := quietPeriod(context.Background(), changed, 5*time.Millisecond)
	assert.True(t, ok)
	assert.Empty(t, changed, "burst events are drained during the quiet period")
}

func TestQuietPeriod_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok := quietPeriod(ctx, make(chan string), time.Hour)
	assert.False(t, ok)
}
