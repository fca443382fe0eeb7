package restart

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/domain/sessionstate"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/paths"
	"github.com/GriffinCanCode/AgentOS/sessiond/tests/helpers/testutil"
)

func TestSessionStatePath(t *testing.T) {
	scratch := filepath.Join("var", "scratch")

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, SessionStatePath(scratch, "8787"), SessionStatePath(scratch, "8787"))
		assert.Equal(t, filepath.Join(scratch, "restart-contexts", "ctx-8787"), SessionStatePath(scratch, "8787"))
	})

	t.Run("keyed by port", func(t *testing.T) {
		assert.NotEqual(t, SessionStatePath(scratch, "8787"), SessionStatePath(scratch, "8788"))
	})

	t.Run("distinct from ordinary suspend path", func(t *testing.T) {
		for _, port := range []string{"8787", "1", ""} {
			assert.NotEqual(t, paths.SuspendedSessionPath(scratch), SessionStatePath(scratch, port))
		}
	})
}

func TestContextHasSessionState(t *testing.T) {
	store := testutil.NewMockStateStore(t)
	c := Context{ScratchPath: "/scratch", Port: "8787"}

	store.On("Exists", c.StatePath()).Return(true).Once()
	assert.True(t, c.HasSessionState(store))

	assert.False(t, Context{ScratchPath: "/scratch"}.HasSessionState(store))
	store.AssertExpectations(t)
}

func TestContextConsume(t *testing.T) {
	ctx := context.Background()
	c := Context{ScratchPath: "/scratch", Port: "8787"}

	t.Run("restores then destroys", func(t *testing.T) {
		store := testutil.NewMockStateStore(t)
		store.On("Restore", ctx, c.StatePath(), false).Return(sessionstate.RestoreResult{}, nil).Once()
		store.On("Destroy", c.StatePath()).Return(nil).Once()

		_, err := c.Consume(ctx, store, false, nil)
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("keeps state when restore fails", func(t *testing.T) {
		store := testutil.NewMockStateStore(t)
		restoreErr := &sessionstate.PersistenceError{Op: "restore", Path: c.StatePath(), Err: sessionstate.ErrChecksum}
		store.On("Restore", ctx, c.StatePath(), true).Return(sessionstate.RestoreResult{}, restoreErr).Once()

		_, err := c.Consume(ctx, store, true, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, sessionstate.ErrChecksum)
		store.AssertNotCalled(t, "Destroy", mock.Anything)
	})

	t.Run("failed removal keeps the restore", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		store := testutil.NewMockStateStore(t)
		restored := sessionstate.RestoreResult{ErrorMessages: []string{"pkg missing"}}
		store.On("Restore", ctx, c.StatePath(), false).Return(restored, nil).Once()
		store.On("Destroy", c.StatePath()).Return(errors.New("busy")).Once()

		result, err := c.Consume(ctx, store, false, zap.New(core))
		require.NoError(t, err)
		assert.Equal(t, []string{"pkg missing"}, result.ErrorMessages)
		assert.Equal(t, 1, logs.FilterMessage("Restart context restored but not removed").Len())
		store.AssertExpectations(t)
	})
}

func TestContextAutoResume(t *testing.T) {
	assert.True(t, Context{}.AutoResume())
}
