// Package progress tracks the lifecycle of enhancement tasks.
//
// A Registry is owned by the caller and shared between concurrently running
// tasks; there is no package-level state. Entries are created when a run
// starts, mutated at each stage transition, and removed either explicitly or
// by an age-based sweep.
package progress

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Stage is one of the fixed, ordered states a run moves through. Error is a
// side exit reachable from any stage.
type Stage string

const (
	StageUploading  Stage = "uploading"
	StageLoadingRaw Stage = "loading_raw"
	StageAnalyzing  Stage = "analyzing"
	StageEnhancing  Stage = "enhancing"
	StageEncoding   Stage = "encoding"
	StageComplete   Stage = "complete"
	StageError      Stage = "error"
)

// Reporter receives the stage transitions of a single task.
type Reporter func(stage Stage, percent int, message string)

// State is the current progress of one task.
type State struct {
	TaskID    string
	Stage     Stage
	Percent   int
	Message   string
	CreatedAt time.Time
}

// Registry is a concurrency-safe map of task states.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*State
	log   zerolog.Logger
	now   func() time.Time
}

// NewRegistry creates an empty registry. Updates are logged through log.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		tasks: make(map[string]*State),
		log:   log,
		now:   time.Now,
	}
}

// Create registers a new task and returns its initial state.
func (r *Registry) Create(taskID string) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := &State{
		TaskID:    taskID,
		Stage:     StageUploading,
		Message:   "Starting...",
		CreatedAt: r.now(),
	}
	r.tasks[taskID] = state

	r.log.Info().Str("task", taskID).Msg("task created")

	return *state
}

// Update records a stage transition for a task. Percent never regresses
// within a task; a lower value keeps the previous one. Updates for unknown
// tasks are dropped.
func (r *Registry) Update(taskID string, stage Stage, percent int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.tasks[taskID]
	if !ok {
		return
	}

	state.Stage = stage
	if percent > state.Percent {
		state.Percent = percent
	}
	state.Message = message

	r.log.Info().
		Str("task", taskID).
		Str("stage", string(stage)).
		Int("percent", state.Percent).
		Msg(message)
}

// Get returns the current state of a task.
func (r *Registry) Get(taskID string) (State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.tasks[taskID]
	if !ok {
		return State{}, false
	}

	return *state, true
}

// Remove deletes a task from the registry.
func (r *Registry) Remove(taskID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tasks, taskID)
}

// Sweep removes every task older than maxAge and returns how many were
// removed. Callers own the sweep schedule.
func (r *Registry) Sweep(maxAge time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0

	for id, state := range r.tasks {
		if now.Sub(state.CreatedAt) > maxAge {
			delete(r.tasks, id)
			removed++
		}
	}

	return removed
}

// Len returns the number of tracked tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tasks)
}

// Reporter adapts one task entry to the orchestrator's progress callback.
func (r *Registry) Reporter(taskID string) Reporter {
	return func(stage Stage, percent int, message string) {
		r.Update(taskID, stage, percent, message)
	}
}
