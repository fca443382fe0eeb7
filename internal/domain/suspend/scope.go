package suspend

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/types"
)

// SerializationScope brackets a serialization. The host is told about the
// action when the scope begins and receives exactly one Completed when it
// ends.
type SerializationScope struct {
	host   Host
	action types.SerializationAction
	logger *zap.Logger
	once   sync.Once
}

// BeginSerialization notifies host of action on path and returns the scope
// to End. End is meant to be deferred.
func BeginSerialization(host Host, action types.SerializationAction, path string) *SerializationScope {
	return beginSerialization(host, action, path, zap.NewNop())
}

func beginSerialization(host Host, action types.SerializationAction, path string, logger *zap.Logger) *SerializationScope {
	host.Serialization(action, path)
	return &SerializationScope{host: host, action: action, logger: logger}
}

// End sends Completed. A failing notification is logged and dropped so it
// never replaces the outcome of the bracketed work.
func (s *SerializationScope) End() {
	s.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Debug("Serialization completion notification failed",
					zap.Stringer("action", s.action),
					zap.String("panic", fmt.Sprint(r)))
			}
		}()
		s.host.Serialization(types.SerializationCompleted, "")
	})
}
