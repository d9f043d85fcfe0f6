package hls

import (
	"os/exec"
	"sync"
	"time"
)

// State tracks a job through its lifecycle. A job transitions to exactly one
// of Completed, TimedOut or Cancelled, and then to Cleaned once its working
// directory has been removed. Cleaned is terminal.
type State int

const (
	// StateStarting covers the window between launch and registration.
	StateStarting State = iota
	// StateRunning means the encoder process is registered and supervised.
	StateRunning
	// StateCompleted means the encoder exited on its own.
	StateCompleted
	// StateTimedOut means the supervisor reaped the encoder at the ceiling.
	StateTimedOut
	// StateCancelled means the job was stopped by an explicit cancel call.
	StateCancelled
	// StateCleaned means the working directory is gone and the id is invalid.
	StateCleaned
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateTimedOut:
		return "timed_out"
	case StateCancelled:
		return "cancelled"
	case StateCleaned:
		return "cleaned"
	default:
		return "unknown"
	}
}

// Job is one live transcode: an encoder process and the working directory it
// writes playlists and segments into. The registry owns a job from creation
// until it is cleaned.
type Job struct {
	ID      string
	Dir     string
	Source  string
	Started time.Time

	cmd *exec.Cmd

	// done is closed by the waiter goroutine once cmd.Wait has returned;
	// after that the process is fully reaped.
	done    chan struct{}
	waitErr error

	mu      sync.Mutex
	state   State
	outcome State // first of Completed/TimedOut/Cancelled to be recorded
}

// State returns the job's current lifecycle state.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Outcome returns the terminal outcome recorded before cleanup, or the
// current state if none has been recorded yet.
func (j *Job) Outcome() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.outcome != StateStarting {
		return j.outcome
	}
	return j.state
}

func (j *Job) setState(s State) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state == StateCleaned {
		return
	}
	switch s {
	case StateCompleted, StateTimedOut, StateCancelled:
		// The first terminal outcome wins; a cancel racing the supervisor
		// must not overwrite what actually happened to the process.
		if j.outcome == StateStarting {
			j.outcome = s
		}
	}
	j.state = s
}

// exited reports whether the encoder process has been reaped.
func (j *Job) exited() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// registry is the mutex-guarded map of live jobs. Removal is the
// serialization point between the per-job supervisor and explicit
// cancellation: whichever path removes the job first owns finalization.
type registry struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

func newRegistry() *registry {
	return &registry{jobs: make(map[string]*Job)}
}

func (r *registry) add(j *Job) {
	r.mu.Lock()
	r.jobs[j.ID] = j
	r.mu.Unlock()
}

// remove takes the job out of the registry, returning false when some other
// path already removed it.
func (r *registry) remove(id string) (*Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if ok {
		delete(r.jobs, id)
	}
	return j, ok
}

func (r *registry) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.jobs))
	for id := range r.jobs {
		ids = append(ids, id)
	}
	return ids
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}
