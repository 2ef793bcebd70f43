// Package filelist implements the built-in directory-listing tool named in
// spec.md's concrete-tool examples alongside web search, calculator, and
// clock.
package filelist

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zolawuzhigang/Research-Agent/errs"
	"github.com/zolawuzhigang/Research-Agent/toolhub"
)

// Tool lists the contents of a directory rooted under a configured base, so
// a step description can never escape the sandboxed root via "..".
type Tool struct {
	root string
}

// New constructs a filelist tool rooted at root.
func New(root string) *Tool {
	return &Tool{root: root}
}

func (t *Tool) Meta() toolhub.Meta {
	return toolhub.Meta{
		Capabilities: []string{"list_files"},
		Description:  "lists files in a directory",
		Reliability:  "high",
		Timeliness:   "high",
	}
}

func (t *Tool) Execute(ctx context.Context, input string) (toolhub.Result, error) {
	select {
	case <-ctx.Done():
		return toolhub.Result{}, ctx.Err()
	default:
	}

	rel := strings.TrimSpace(input)
	target, err := t.resolve(rel)
	if err != nil {
		return toolhub.Result{}, errs.New(errs.KindToolInvalidInput, err.Error())
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return toolhub.Result{}, errs.Wrap(errs.KindToolExecution, err, "failed to list directory")
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return toolhub.Result{Success: true, Result: strings.Join(names, "\n")}, nil
}

// resolve joins rel onto root and rejects any path that escapes it.
func (t *Tool) resolve(rel string) (string, error) {
	if rel == "" {
		rel = "."
	}
	joined := filepath.Join(t.root, rel)
	cleanRoot := filepath.Clean(t.root)
	if joined != cleanRoot && !strings.HasPrefix(joined, cleanRoot+string(filepath.Separator)) {
		return "", os.ErrPermission
	}
	return joined, nil
}
