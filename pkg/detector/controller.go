// Package detector ties the pieces together: it owns the session store and
// at most one active runner, drains the runner's notifications on a single
// goroutine, and fans results out to any number of watchers.
package detector

import (
	"sync"

	"github.com/cyclopcam/logs"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/gen"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/runner"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/session"
)

// SYNC-WATCHER-CHANNEL-SIZE
const WatcherChannelSize = 100

// activeRun is the part of a runner that the controller drives. Both
// runner.Runner and runner.DualRunner satisfy it.
type activeRun interface {
	Stop()
	Wait()
	State() runner.State
	Notifications() <-chan runner.Notification
}

type Controller struct {
	Log   logs.Log
	store *session.Store

	lock      sync.Mutex // guards active and drainDone
	active    activeRun
	drainDone chan bool

	watchersLock sync.RWMutex
	watchers     []chan runner.Notification
}

func NewController(logger logs.Log) *Controller {
	return &Controller{
		Log:   logger,
		store: session.NewStore(logger),
	}
}

// Store returns the session store. Safe to read at any time; the controller
// is the only writer.
func (c *Controller) Store() *session.Store {
	return c.store
}

// StartRun stops any active run, then launches a single model run. When the
// run performs inference, a detection session records its results and is
// closed when the run ends. Preview frames never touch the session.
func (c *Controller) StartRun(cfg runner.Config) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.stopActiveLocked()

	recordSession := cfg.InferenceEnabled
	if recordSession {
		if _, err := c.store.Start(cfg.Source.Mode, cfg.ModelName); err != nil {
			return err
		}
	}

	r := runner.NewRunner(c.Log, cfg)
	if err := r.Start(); err != nil {
		if recordSession {
			c.store.End()
		}
		return err
	}
	c.launchDrainLocked(r, recordSession)
	return nil
}

// StartCompare stops any active run, then launches a dual model comparison.
// Comparison runs are for side-by-side inspection and do not record a
// session.
func (c *Controller) StartCompare(cfg runner.DualConfig) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.stopActiveLocked()

	r := runner.NewDualRunner(c.Log, cfg)
	if err := r.Start(); err != nil {
		return err
	}
	c.launchDrainLocked(r, false)
	return nil
}

// Stop halts the active run and blocks until its worker and our drain
// goroutine have both exited. A no-op when nothing is running.
func (c *Controller) Stop() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.stopActiveLocked()
}

// Wait blocks until the active run completes on its own (or is stopped from
// another goroutine). Returns immediately when nothing is running.
func (c *Controller) Wait() {
	c.lock.Lock()
	done := c.drainDone
	c.lock.Unlock()
	if done != nil {
		<-done
	}
}

// State reports the state of the active run, or StateIdle.
func (c *Controller) State() runner.State {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.active == nil {
		return runner.StateIdle
	}
	return c.active.State()
}

func (c *Controller) launchDrainLocked(r activeRun, recordSession bool) {
	done := make(chan bool)
	c.active = r
	c.drainDone = done
	go c.drain(r, done, recordSession)
}

// stopActiveLocked joins the previous run completely before we return, so
// that two workers never overlap, and so that the old run's session is
// closed before a new one starts.
func (c *Controller) stopActiveLocked() {
	if c.active == nil {
		return
	}
	c.active.Stop()
	c.active.Wait()
	<-c.drainDone
	c.active = nil
	c.drainDone = nil
}

func (c *Controller) drain(r activeRun, done chan bool, recordSession bool) {
	for n := range r.Notifications() {
		if recordSession {
			if n.Frame != nil && !n.Frame.Preview {
				c.store.AddDetections(n.Frame.Index, n.Frame.Detections)
			}
		}
		c.sendToWatchers(n)
	}
	if recordSession {
		c.store.End()
	}
	close(done)
}

// AddWatcher registers a channel that receives every runner notification.
func (c *Controller) AddWatcher() chan runner.Notification {
	c.watchersLock.Lock()
	defer c.watchersLock.Unlock()
	ch := make(chan runner.Notification, WatcherChannelSize)
	c.watchers = append(c.watchers, ch)
	return ch
}

// RemoveWatcher unregisters a channel returned by AddWatcher.
func (c *Controller) RemoveWatcher(ch chan runner.Notification) {
	c.watchersLock.Lock()
	defer c.watchersLock.Unlock()
	for i, w := range c.watchers {
		if w == ch {
			c.watchers = gen.DeleteFromSliceUnordered(c.watchers, i)
			return
		}
	}
	c.Log.Warnf("Controller.RemoveWatcher failed to find channel")
}

func (c *Controller) sendToWatchers(n runner.Notification) {
	c.watchersLock.RLock()
	for _, ch := range c.watchers {
		// SYNC-WATCHER-CHANNEL-SIZE
		if len(ch) >= cap(ch)*9/10 {
			// Watchers are expected to keep up. If one stalls, we drop
			// rather than stall the drain loop and with it the session store.
			c.Log.Warnf("Detection watcher is falling behind. I am going to drop notifications.")
		} else {
			ch <- n
		}
	}
	c.watchersLock.RUnlock()
}
