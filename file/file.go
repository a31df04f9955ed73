// Package file finds song files for batch runs.
package file

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Gather walks dir and returns every file ending in one of exts, sorted.
// A maxNum of zero means no limit.
func Gather(dir string, maxNum int, exts ...string) ([]string, error) {
	var res []string
	walk := func(s string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !hasExt(s, exts) {
			return nil
		}
		res = append(res, s)
		return nil
	}
	if err := filepath.WalkDir(dir, walk); err != nil {
		return nil, err
	}
	sort.Strings(res)
	if maxNum > 0 && len(res) > maxNum {
		res = res[:maxNum]
	}
	return res, nil
}

func hasExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
