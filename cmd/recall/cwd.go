package main

import (
	"os"
	"path/filepath"
)

// CwdOverrideEnv substitutes for the launch working directory when resolving
// a relative --cwd filter.
const CwdOverrideEnv = "RECALL_CWD_OVERRIDE"

// resolveCwdFilter normalises a --cwd flag value: empty stays empty (no
// filter), absolute paths pass through cleaned, and relative paths (".",
// "../foo") resolve against the effective launch directory.
func resolveCwdFilter(c string) string {
	if c == "" {
		return ""
	}
	if filepath.IsAbs(c) {
		return filepath.Clean(c)
	}
	base := os.Getenv(CwdOverrideEnv)
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return c
		}
		base = wd
	}
	return filepath.Join(base, c)
}
