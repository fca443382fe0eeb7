// Package interrupts suppresses user interrupts around critical writes.
//
// A Controller owns the process's interrupt signals. While at least one
// Suppress guard is held, interrupts are held back instead of delivered;
// the last release delivers one held interrupt.
package interrupts

import (
	"os"
	"os/signal"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/logging"
)

// Handler receives interrupts that were not suppressed
type Handler func(sig os.Signal)

// Controller gates interrupt delivery
type Controller struct {
	logger  *zap.Logger
	handler Handler

	mu      sync.Mutex
	depth   int
	pending os.Signal

	sigs chan os.Signal
	done chan struct{}
}

// NewController creates a controller delivering interrupts to handler
func NewController(logger *zap.Logger, handler Handler) *Controller {
	return &Controller{
		logger:  logging.OrNop(logger),
		handler: handler,
	}
}

// Start subscribes to the given signals (os.Interrupt if none)
func (c *Controller) Start(signals ...os.Signal) {
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt}
	}

	c.mu.Lock()
	if c.sigs != nil {
		c.mu.Unlock()
		return
	}
	c.sigs = make(chan os.Signal, 1)
	c.done = make(chan struct{})
	sigs, done := c.sigs, c.done
	c.mu.Unlock()

	signal.Notify(sigs, signals...)
	go func() {
		for {
			select {
			case sig := <-sigs:
				c.deliver(sig)
			case <-done:
				return
			}
		}
	}()
}

// Stop unsubscribes from signals
func (c *Controller) Stop() {
	c.mu.Lock()
	sigs, done := c.sigs, c.done
	c.sigs, c.done = nil, nil
	c.mu.Unlock()

	if sigs == nil {
		return
	}
	signal.Stop(sigs)
	close(done)
}

// Suppress holds back interrupts until the returned release is called.
// Guards nest; release is idempotent and restores the previous depth.
func (c *Controller) Suppress() (release func()) {
	c.mu.Lock()
	c.depth++
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(c.release)
	}
}

// Suppressed reports whether any guard is held
func (c *Controller) Suppressed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.depth > 0
}

func (c *Controller) release() {
	c.mu.Lock()
	c.depth--
	var sig os.Signal
	if c.depth == 0 && c.pending != nil {
		sig, c.pending = c.pending, nil
	}
	c.mu.Unlock()

	if sig != nil {
		c.logger.Debug("Delivering interrupt held during suppression", zap.String("signal", sig.String()))
		c.dispatch(sig)
	}
}

func (c *Controller) deliver(sig os.Signal) {
	c.mu.Lock()
	if c.depth > 0 {
		c.pending = sig
		c.mu.Unlock()
		c.logger.Debug("Interrupt suppressed", zap.String("signal", sig.String()))
		return
	}
	c.mu.Unlock()

	c.dispatch(sig)
}

func (c *Controller) dispatch(sig os.Signal) {
	if c.handler != nil {
		c.handler(sig)
	}
}
