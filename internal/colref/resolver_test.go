package colref_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/hscode-reconciler/internal/colref"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		ref  string
		want int
	}{
		{"A", 0},
		{"B", 1},
		{"Z", 25},
		{"AA", 26},
		{"AZ", 51},
		{"f", 5},
		{" p ", 15},
		{"1", 0},
		{"16", 15},
		{"0", 0},
		{"", 0},
		{"?!", 0},
		{"A1", 0},
		{"-3", 0},
		{"XFD", 16383},
		{"XFE", 16384},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, colref.Resolve(tt.ref))
		})
	}
}

func TestResolveAll(t *testing.T) {
	assert.Equal(t, []int{15, 14}, colref.ResolveAll([]string{"P", "O"}))
	assert.Empty(t, colref.ResolveAll(nil))
}

func TestIsValid(t *testing.T) {
	assert.True(t, colref.IsValid("F"))
	assert.True(t, colref.IsValid("12"))
	assert.True(t, colref.IsValid(" aa "))
	assert.False(t, colref.IsValid(""))
	assert.False(t, colref.IsValid("F6"))
	assert.False(t, colref.IsValid("?!"))
}

func TestName(t *testing.T) {
	assert.Equal(t, "A", colref.Name(0))
	assert.Equal(t, "Z", colref.Name(25))
	assert.Equal(t, "AA", colref.Name(26))
	assert.Equal(t, "A", colref.Name(-4))
	assert.Equal(t, "XFE", colref.Name(16384))

	for _, ref := range []string{"A", "H", "AB", "ZZ", "XFD"} {
		assert.Equal(t, ref, colref.Name(colref.Resolve(ref)))
	}
}
