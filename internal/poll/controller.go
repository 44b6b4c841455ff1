// Package poll reloads a view on a fixed period while it is shown.
package poll

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Default periods of the polling views
const (
	OutboxInterval = time.Second
	BoxesInterval  = 5 * time.Second
)

// Registry counts running timers across controllers
type Registry struct {
	active atomic.Int64
}

// Active returns the number of running timers
func (r *Registry) Active() int {
	return int(r.active.Load())
}

// Controller fires reload every interval between Start and Stop. Each
// reload runs in its own goroutine, so a slow reload may overlap the next
// tick. Reload failures are the reload function's business.
type Controller struct {
	name     string
	interval time.Duration
	reload   func()
	registry *Registry
	logger   *slog.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewController creates a stopped controller. registry may be nil.
func NewController(name string, interval time.Duration, reload func(), registry *Registry, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		name:     name,
		interval: interval,
		reload:   reload,
		registry: registry,
		logger:   logger,
	}
}

// Start begins polling. Starting a running controller does nothing.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return
	}

	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	if c.registry != nil {
		c.registry.active.Add(1)
	}
	c.logger.Debug("poll started", "view", c.name, "interval", c.interval)

	go c.loop(c.stop, c.done)
}

// Stop cancels the timer and waits for it to exit. No tick fires after
// Stop returns; reloads already started are not interrupted.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop == nil {
		return
	}

	close(c.stop)
	<-c.done
	c.stop, c.done = nil, nil
	if c.registry != nil {
		c.registry.active.Add(-1)
	}
	c.logger.Debug("poll stopped", "view", c.name)
}

// Active reports whether the controller is running
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}

func (c *Controller) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			go c.reload()
		}
	}
}
