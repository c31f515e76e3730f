package cronexpr

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ErrDuplicateID is returned when an id is registered twice.
var ErrDuplicateID = errors.New("cron id already registered")

// Handle identifies a registered schedule.
type Handle struct {
	ID    string       `json:"id"`
	Expr  string       `json:"expr"`
	Entry cron.EntryID `json:"entry"`
}

// Registrar accepts a cron expression and a unique id and schedules it.
type Registrar interface {
	Register(expr, id string) (Handle, error)
}

// Trigger is called with the registered id every time its schedule fires.
type Trigger func(id string)

// Schedule describes one registered entry and its next run.
type Schedule struct {
	Handle
	Next time.Time `json:"next"`
}

// LocalRegistrar schedules entries on an in-process cron scheduler.
type LocalRegistrar struct {
	cron    *cron.Cron
	trigger Trigger
	log     zerolog.Logger

	mu      sync.Mutex
	handles map[string]Handle
}

// NewLocalRegistrar creates a registrar in loc. Call Start to begin firing
// triggers.
func NewLocalRegistrar(loc *time.Location, trigger Trigger, log zerolog.Logger) *LocalRegistrar {
	return &LocalRegistrar{
		cron:    cron.New(cron.WithLocation(loc)),
		trigger: trigger,
		log:     log,
		handles: make(map[string]Handle),
	}
}

// Register schedules trigger(id) on expr.
func (r *LocalRegistrar) Register(expr, id string) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handles[id]; ok {
		return Handle{}, fmt.Errorf("Register: %w: %s", ErrDuplicateID, id)
	}

	entry, err := r.cron.AddFunc(expr, func() {
		r.log.Info().Str("cron_id", id).Msg("Schedule fired")
		r.trigger(id)
	})
	if err != nil {
		return Handle{}, fmt.Errorf("Register: %s: %w", id, err)
	}

	h := Handle{ID: id, Expr: expr, Entry: entry}
	r.handles[id] = h
	r.log.Debug().Str("cron_id", id).Str("expr", expr).Msg("Schedule registered")
	return h, nil
}

// Remove unschedules id. Removing an unknown id is a no-op.
func (r *LocalRegistrar) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.handles[id]; ok {
		r.cron.Remove(h.Entry)
		delete(r.handles, id)
	}
}

// Schedules lists the registered entries ordered by id.
func (r *LocalRegistrar) Schedules() []Schedule {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Schedule, 0, len(r.handles))
	for _, h := range r.handles {
		out = append(out, Schedule{Handle: h, Next: r.cron.Entry(h.Entry).Next})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Start runs the scheduler in its own goroutine.
func (r *LocalRegistrar) Start() {
	r.cron.Start()
}

// Stop stops the scheduler and waits for running triggers to finish.
func (r *LocalRegistrar) Stop() {
	<-r.cron.Stop().Done()
}

var _ Registrar = (*LocalRegistrar)(nil)
