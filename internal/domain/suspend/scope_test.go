package suspend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/sessiond/tests/helpers/testutil"
)

func TestSerializationScope(t *testing.T) {
	t.Run("begin notifies immediately", func(t *testing.T) {
		host := testutil.NewMockHost(t)
		scope := BeginSerialization(host, types.SerializationSaveDefaultWorkspace, "/tmp/ws")

		host.AssertCalled(t, "Serialization", types.SerializationSaveDefaultWorkspace, "/tmp/ws")
		assert.Equal(t, []types.SerializationAction{types.SerializationSaveDefaultWorkspace}, host.SerializationActions())

		scope.End()
		assert.Equal(t, []types.SerializationAction{
			types.SerializationSaveDefaultWorkspace,
			types.SerializationCompleted,
		}, host.SerializationActions())
		host.AssertCalled(t, "Serialization", types.SerializationCompleted, "")
	})

	t.Run("end is idempotent", func(t *testing.T) {
		host := testutil.NewMockHost(t)
		scope := BeginSerialization(host, types.SerializationLoadDefaultWorkspace, "/tmp/ws")
		scope.End()
		scope.End()

		assert.Len(t, host.SerializationActions(), 2)
	})

	t.Run("completion failure is swallowed", func(t *testing.T) {
		host := new(testutil.MockHost)
		host.On("Serialization", types.SerializationResumeSession, "/tmp/ws").Once()
		host.On("Serialization", types.SerializationCompleted, "").Panic("notify failed").Once()

		scope := BeginSerialization(host, types.SerializationResumeSession, "/tmp/ws")
		assert.NotPanics(t, scope.End)
		host.AssertExpectations(t)
	})
}
