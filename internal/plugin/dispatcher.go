package plugin

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/repcoach/internal/session"
)

// queueSize is the number of events waiting for plugins before new ones are
// dropped.
const queueSize = 16

// Dispatcher turns processed frames into plugin events. Register it with
// Coach.AddObserver. Plugins run on a single background worker, so a slow
// plugin delays other plugins but never the frame path.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	log      logrus.FieldLogger

	queue chan Request
	wg    sync.WaitGroup

	mu          sync.Mutex
	lastSession string
	closed      bool
}

// NewDispatcher creates a Dispatcher and starts its worker.
func NewDispatcher(manager *Manager, executor *Executor, log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	d := &Dispatcher{
		manager:  manager,
		executor: executor,
		log:      log.WithField("component", "plugins"),
		queue:    make(chan Request, queueSize),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// FrameProcessed implements session.Observer. The first output of a new
// session id raises EventSessionStarted; a counted output raises
// EventRepCounted.
func (d *Dispatcher) FrameProcessed(out session.Output, _ time.Duration) {
	if out.SessionID == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	if out.SessionID != d.lastSession {
		d.lastSession = out.SessionID
		d.enqueue(Request{
			Event:     EventSessionStarted,
			Exercise:  out.Exercise,
			SessionID: out.SessionID,
			Timestamp: out.Timestamp,
		})
	}
	if out.Counted {
		d.enqueue(Request{
			Event:     EventRepCounted,
			Exercise:  out.Exercise,
			SessionID: out.SessionID,
			Count:     out.Count,
			Timestamp: out.Timestamp,
		})
	}
}

// enqueue must be called with d.mu held.
func (d *Dispatcher) enqueue(req Request) {
	if len(d.manager.Subscribers(req.Event)) == 0 {
		return
	}
	select {
	case d.queue <- req:
	default:
		d.log.WithField("event", req.Event).Warn("Plugin queue full, event dropped")
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for req := range d.queue {
		for _, p := range d.manager.Subscribers(req.Event) {
			r := req
			resp, err := d.executor.Execute(context.Background(), p, &r)
			entry := d.log.WithFields(logrus.Fields{
				"plugin": p.Manifest.Name,
				"event":  req.Event,
			})
			switch {
			case err != nil:
				entry.WithError(err).Warn("Plugin failed")
			case !resp.Success:
				entry.WithField("error", resp.Error).Warn("Plugin reported failure")
			default:
				entry.Debug("Plugin ran")
			}
		}
	}
}

// Close stops accepting events and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}
