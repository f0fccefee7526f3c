package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func TestLocateSnippet(t *testing.T) {
	source := "package main\r\n\r\nfunc main() {   \r\n\tprintln(\"hi\")\r\n}\r\n"
	tests := []struct {
		name    string
		snippet string
		line    int
		found   bool
	}{
		{"single line", "package main", 1, true},
		{"multi line crlf vs lf", "func main() {\n\tprintln(\"hi\")\n}", 3, true},
		{"trailing whitespace ignored", "func main() {\t\n\tprintln(\"hi\")  \n\n", 3, true},
		{"leading whitespace matters", "println(\"hi\")", 0, false},
		{"absent", "func other() {}", 0, false},
		{"empty", "  \n", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, found := LocateSnippet(source, tt.snippet)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.line, line)
		})
	}
}

func TestProject_LineOffset(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "a.go"), []byte("package pkg\n\nvar x = 1\n"), 0o644))

	picks := 0
	p := New(afs.New(), PickerFunc(func(context.Context) (string, error) {
		picks++
		return root, nil
	}), "")

	ctx := context.Background()
	line, found, err := p.LineOffset(ctx, "pkg/a.go", "var x = 1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, line)

	_, found, err = p.LineOffset(ctx, "pkg/a.go", "var y = 2")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 1, picks, "the root is picked once")

	_, _, err = p.LineOffset(ctx, "pkg/missing.go", "var x = 1")
	assert.Error(t, err)
}

func TestProject_RootErrors(t *testing.T) {
	ctx := context.Background()
	_, err := New(nil, nil, "").Root(ctx)
	assert.ErrorIs(t, err, ErrNoProjectRoot)

	_, err = New(nil, PickerFunc(func(context.Context) (string, error) { return "", nil }), "").Root(ctx)
	assert.ErrorIs(t, err, ErrNoProjectRoot)

	boom := errors.New("dialog closed")
	_, err = New(nil, PickerFunc(func(context.Context) (string, error) { return "", boom }), "").Root(ctx)
	assert.ErrorIs(t, err, boom)

	root, err := New(nil, nil, "/srv/app").Root(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/srv/app", root)
}

func TestWatcher_ReportsChangedFiles(t *testing.T) {
	root := t.TempDir()
	changed := make(chan []string, 1)
	w, err := NewWatcher(root,
		WithDebounceDelay(20*time.Millisecond),
		WithOnChange(func(paths []string) { changed <- paths }),
	)
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0o644))

	select {
	case paths := <-changed:
		assert.Contains(t, paths, "main.go")
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}
