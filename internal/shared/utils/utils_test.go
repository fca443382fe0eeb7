package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", false, false},
		{"", true, true},
		{"1", false, true},
		{"TRUE", false, true},
		{" yes ", false, true},
		{"On", false, true},
		{"0", true, false},
		{"False", true, false},
		{"no", true, false},
		{"OFF", true, false},
		{"maybe", true, true},
		{"maybe", false, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsTruthy(tt.value, tt.def), "IsTruthy(%q, %v)", tt.value, tt.def)
	}
}

func TestMatchEnv(t *testing.T) {
	environ := []string{"LANG=en_US.UTF-8", "LC_ALL=C", "HOME=/root", "LC_TIME=de", "=broken", "NOEQ"}

	got := MatchEnv(environ, []string{"LANG", "LC_*"})
	assert.Equal(t, map[string]string{"LANG": "en_US.UTF-8", "LC_ALL": "C", "LC_TIME": "de"}, got)

	assert.Empty(t, MatchEnv(environ, nil))
}

func TestParseEnvAssignments(t *testing.T) {
	got := ParseEnvAssignments("A=1, B = 2 ,bad,C=")
	assert.Equal(t, map[string]string{"A": "1", "B": " 2", "C": ""}, got)
	assert.Equal(t, []string{"A", "B", "C"}, SortedKeys(got))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"LANG", "LC_*"}, SplitList(" LANG, ,LC_* "))
	assert.Nil(t, SplitList(""))
}

func TestChecksum(t *testing.T) {
	h := DefaultHasher()
	sum := h.Checksum([]byte("workspace"))

	assert.Contains(t, sum, "sha256:")
	assert.True(t, h.Verify([]byte("workspace"), sum))
	assert.False(t, h.Verify([]byte("tampered"), sum))
	assert.True(t, h.Verify([]byte("anything"), ""))
	assert.False(t, h.Verify([]byte("x"), "garbage"))
}
