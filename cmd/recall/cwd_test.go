package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCwdFilterEmpty(t *testing.T) {
	assert.Equal(t, "", resolveCwdFilter(""))
}

func TestResolveCwdFilterAbsolutePassesThrough(t *testing.T) {
	assert.Equal(t, "/home/u/proj", resolveCwdFilter("/home/u/proj/"))
}

func TestResolveCwdFilterRelativeUsesOverride(t *testing.T) {
	t.Setenv(CwdOverrideEnv, "/work/base")
	assert.Equal(t, filepath.Join("/work/base", "sub"), resolveCwdFilter("sub"))
	assert.Equal(t, "/work/base", resolveCwdFilter("."))
}
