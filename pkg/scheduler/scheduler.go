package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fadedpez/trackbattle/internal/logging"
	"github.com/fadedpez/trackbattle/pkg/metrics"
)

// Task represents a scheduled task
type Task struct {
	Name     string
	Interval time.Duration
	Fn       func(context.Context) error

	// SkipStartup keeps the task from running when the scheduler starts
	// even if RunOnStart is set; it first runs on its first tick.
	SkipStartup bool
}

// TaskOption tweaks a task as it is added
type TaskOption func(*Task)

// SkipStartup makes the task wait for its first tick
func SkipStartup() TaskOption {
	return func(t *Task) { t.SkipStartup = true }
}

// Scheduler manages scheduled tasks
type Scheduler struct {
	tasks   []*Task
	running bool
	mutex   sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	clock   Clock
	logger  *logging.Logger

	// RunOnStart runs every task once as soon as the scheduler starts
	RunOnStart bool
	Metrics    *metrics.Metrics
}

// NewScheduler creates a new scheduler
func NewScheduler(clock Clock, logger *logging.Logger) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = logging.Default
	}
	return &Scheduler{
		tasks:      make([]*Task, 0),
		clock:      clock,
		logger:     logger.With("SCHEDULER"),
		RunOnStart: true,
	}
}

// AddTask adds a task to the scheduler. Tasks added after Start are not run.
func (s *Scheduler) AddTask(name string, interval time.Duration, fn func(context.Context) error, opts ...TaskOption) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	task := &Task{
		Name:     name,
		Interval: interval,
		Fn:       fn,
	}
	for _, opt := range opts {
		opt(task)
	}
	s.tasks = append(s.tasks, task)
}

// Tasks returns the names of the registered tasks
func (s *Scheduler) Tasks() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	names := make([]string, 0, len(s.tasks))
	for _, t := range s.tasks {
		names = append(names, t.Name)
	}
	return names
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	for _, task := range s.tasks {
		if task.Interval <= 0 {
			s.logger.Warn("Task %s has no interval, skipping", task.Name)
			continue
		}
		ticker := s.clock.NewTicker(task.Interval)
		s.wg.Add(1)
		go s.runTask(ctx, task, ticker)
	}

	s.logger.Info("Scheduler started with %d tasks", len(s.tasks))
}

// Stop cancels all tasks and waits for in-flight runs to return
func (s *Scheduler) Stop() {
	s.mutex.Lock()
	if !s.running {
		s.mutex.Unlock()
		return
	}
	s.cancel()
	s.running = false
	s.mutex.Unlock()

	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}

// runTask runs a task at the specified interval
func (s *Scheduler) runTask(ctx context.Context, task *Task, ticker Ticker) {
	defer s.wg.Done()
	defer ticker.Stop()

	if s.RunOnStart && !task.SkipStartup {
		s.logger.Debug("Running task %s immediately on startup", task.Name)
		s.run(ctx, task)
	}

	for {
		select {
		case <-ticker.C():
			if ctx.Err() != nil {
				return
			}
			s.logger.Debug("Running scheduled task: %s", task.Name)
			s.run(ctx, task)
		case <-ctx.Done():
			s.logger.Debug("Task %s stopped", task.Name)
			return
		}
	}
}

func (s *Scheduler) run(ctx context.Context, task *Task) {
	start := s.clock.Now()
	var err error
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Task %s panicked: %v", task.Name, r)
			err = fmt.Errorf("panic: %v", r)
		}
		s.Metrics.RecordSweep(task.Name, err, s.clock.Now().Sub(start).Seconds())
	}()
	if err = task.Fn(ctx); err != nil {
		s.logger.Error("Error running task %s: %v", task.Name, err)
	}
}
