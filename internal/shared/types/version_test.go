package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Version
		wantErr bool
	}{
		{"full", "4.3.2", Version{4, 3, 2}, false},
		{"major minor", "4.3", Version{4, 3, 0}, false},
		{"major only", "4", Version{4, 0, 0}, false},
		{"whitespace", " 4.1.0 ", Version{4, 1, 0}, false},
		{"empty", "", Version{}, true},
		{"too many parts", "1.2.3.4", Version{}, true},
		{"not a number", "4.x", Version{}, true},
		{"negative", "4.-1", Version{}, true},
		{"leading v", "v4.2.1", Version{4, 2, 1}, false},
		{"prerelease", "4.4.0-rc1", Version{}, true},
		{"build metadata", "4.4.0+devel", Version{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersionCompare(t *testing.T) {
	assert.Equal(t, 0, MustParseVersion("4.3.2").Compare(MustParseVersion("4.3.2")))
	assert.Equal(t, -1, MustParseVersion("4.3.2").Compare(MustParseVersion("4.4.0")))
	assert.Equal(t, 1, MustParseVersion("5.0").Compare(MustParseVersion("4.9.9")))
	assert.Equal(t, "4.3.0", MustParseVersion("4.3").String())
}

func TestSessionStateInfoMismatch(t *testing.T) {
	active := MustParseVersion("4.4.0")

	assert.False(t, SessionStateInfo{ActiveVersion: active}.Mismatch(), "nothing restored yet")
	assert.False(t, SessionStateInfo{SuspendedVersion: active, ActiveVersion: active}.Mismatch())
	assert.True(t, SessionStateInfo{SuspendedVersion: MustParseVersion("4.3.1"), ActiveVersion: active}.Mismatch())
}

func TestSerializationActionString(t *testing.T) {
	assert.Equal(t, "suspend_session", SerializationSuspendSession.String())
	assert.Equal(t, "completed", SerializationCompleted.String())
	assert.Equal(t, "unknown", SerializationAction(0).String())
}

func TestNewSuspendOptions(t *testing.T) {
	opts := NewSuspendOptions(ExitForce, "A=1")
	assert.Equal(t, 101, opts.ExitStatus)
	assert.Equal(t, "A=1", opts.EphemeralEnvVars)
	assert.False(t, opts.SaveMinimal)
	assert.False(t, opts.SaveWorkspace)
}
