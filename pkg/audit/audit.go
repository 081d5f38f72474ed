// Package audit checks that the files a test setup expects are present.
// It only reports; it never creates or repairs anything.
package audit

import (
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// Result lists the outcome of an audit.
type Result struct {
	Checked []string

	// Missing keeps the order the paths were given in.
	Missing []string
}

// OK reports whether every checked path was found.
func (r Result) OK() bool {
	return len(r.Missing) == 0
}

// Files checks each path, relative to root, for existence. Paths that cannot
// be stat'ed for any reason count as missing.
func Files(fsys afero.Fs, root string, paths []string) Result {
	missing := lo.Filter(paths, func(p string, _ int) bool {
		ok, err := afero.Exists(fsys, filepath.Join(root, filepath.FromSlash(p)))
		return err != nil || !ok
	})

	return Result{
		Checked: paths,
		Missing: missing,
	}
}
