// Package project resolves code-node snippets against files under a project root.
package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

var ErrNoProjectRoot = errors.New("no project root selected")

// FolderPicker asks the user for a project root.
type FolderPicker interface {
	PickFolder(ctx context.Context) (string, error)
}

// PickerFunc adapts a function to FolderPicker.
type PickerFunc func(ctx context.Context) (string, error)

func (f PickerFunc) PickFolder(ctx context.Context) (string, error) { return f(ctx) }

// Project reads source files relative to a root that is chosen on first use.
type Project struct {
	fs     afs.Service
	picker FolderPicker
	root   string
}

func New(fs afs.Service, picker FolderPicker, root string) *Project {
	if fs == nil {
		fs = afs.New()
	}
	return &Project{fs: fs, picker: picker, root: root}
}

// Root returns the project root, consulting the picker the first time.
func (p *Project) Root(ctx context.Context) (string, error) {
	if p.root != "" {
		return p.root, nil
	}
	if p.picker == nil {
		return "", ErrNoProjectRoot
	}
	root, err := p.picker.PickFolder(ctx)
	if err != nil {
		return "", fmt.Errorf("pick project root: %w", err)
	}
	if root == "" {
		return "", ErrNoProjectRoot
	}
	p.root = root
	return root, nil
}

// KnownRoot returns the root without asking for one.
func (p *Project) KnownRoot() string { return p.root }

func (p *Project) SetRoot(root string) { p.root = root }

// LineOffset finds code inside root/filePath and returns its 1-based starting line.
// found is false when the snippet is not in the file; that is not an error.
func (p *Project) LineOffset(ctx context.Context, filePath, code string) (line int, found bool, err error) {
	root, err := p.Root(ctx)
	if err != nil {
		return 0, false, err
	}
	location := url.Join(root, filePath)
	data, err := p.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return 0, false, fmt.Errorf("read %s: %w", location, err)
	}
	line, found = LocateSnippet(string(data), code)
	return line, found, nil
}

// LocateSnippet returns the 1-based line at which snippet's lines appear, in order,
// in source. Line endings are normalized and trailing whitespace is ignored.
func LocateSnippet(source, snippet string) (int, bool) {
	want := splitLines(strings.TrimRight(normalize(snippet), " \t\n"))
	if len(want) == 1 && want[0] == "" {
		return 0, false
	}
	have := splitLines(normalize(source))
	for i := 0; i+len(want) <= len(have); i++ {
		if matchAt(have, want, i) {
			return i + 1, true
		}
	}
	return 0, false
}

func matchAt(have, want []string, at int) bool {
	for j := range want {
		if have[at+j] != want[j] {
			return false
		}
	}
	return true
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return lines
}
