package util

import (
	"path/filepath"
	"strings"
)

// SafeJoin joins rel under root and refuses paths that escape it.
func SafeJoin(root, rel string) (string, bool) {
	p := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(rel, "/")))
	r, err := filepath.Rel(root, p)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", false
	}
	return p, true
}
