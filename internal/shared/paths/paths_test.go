package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForWithProject(t *testing.T) {
	p := For("/scratch", "/home/me/proj")

	assert.Equal(t, filepath.Join("/scratch", "suspended-session-data"), p.SuspendedSessionPath)
	assert.Equal(t, filepath.Join("/scratch", "client-state"), p.ClientStatePath)
	assert.Equal(t, filepath.Join("/home/me/proj", ".sessiond", "client-state"), p.ProjectClientStatePath)
	assert.False(t, p.IsZero())
}

func TestForWithoutProject(t *testing.T) {
	p := For("/scratch", "")

	assert.Equal(t, filepath.Join("/scratch", "project-client-state"), p.ProjectClientStatePath)
	assert.NotEqual(t, p.ClientStatePath, p.ProjectClientStatePath)
}

func TestValidatePort(t *testing.T) {
	tests := []struct {
		port    string
		wantErr bool
	}{
		{"8787", false},
		{"rs-1", false},
		{"", true},
		{"../x", true},
		{"a/b", true},
		{"..", true},
	}

	for _, tt := range tests {
		err := ValidatePort(tt.port)
		if tt.wantErr {
			assert.Error(t, err, tt.port)
		} else {
			assert.NoError(t, err, tt.port)
		}
	}
}
