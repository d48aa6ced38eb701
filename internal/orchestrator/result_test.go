package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunResult_Empty(t *testing.T) {
	r := NewRunResult()
	assert.True(t, r.Empty())
	assert.Equal(t, "", r.DefaultVersion())
	assert.Empty(t, r.Versions())
}

func TestRunResult_AppendKeepsOrder(t *testing.T) {
	r := NewRunResult()
	r.Append("v2", "pkg_a")
	r.Append("v1", "pkg_b")
	r.Append("v2", "pkg_c")

	assert.False(t, r.Empty())
	// Version order is insertion order, not lexical.
	assert.Equal(t, []string{"v2", "v1"}, r.Versions())
	assert.Equal(t, []string{"pkg_a", "pkg_c"}, r.Packages("v2"))
	assert.Equal(t, []string{"pkg_b"}, r.Packages("v1"))
	assert.Equal(t, "v2", r.DefaultVersion())
}

func TestRunResult_OtherVersions(t *testing.T) {
	r := NewRunResult()
	r.Append("v1", "a")
	r.Append("v2", "b")
	r.Append("v3", "c")

	assert.Equal(t, []string{"v2", "v3"}, r.OtherVersions("v1"))
	assert.Equal(t, []string{"v1", "v3"}, r.OtherVersions("v2"))
	assert.Equal(t, []string{"v1", "v2", "v3"}, r.OtherVersions("unknown"))
}

func TestRunResult_PackagesCopies(t *testing.T) {
	r := NewRunResult()
	r.Append("v1", "a")

	pkgs := r.Packages("v1")
	pkgs[0] = "mutated"
	assert.Equal(t, []string{"a"}, r.Packages("v1"))
}
