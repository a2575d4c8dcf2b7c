package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/svirin/newswatch/app/admission"
	"github.com/svirin/newswatch/app/cfg"
	"github.com/svirin/newswatch/app/sources"
)

// minPollDelay is the floor for a jittered poll delay.
const minPollDelay = 100 * time.Millisecond

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type poller struct {
	collector    sources.Collector
	baseInterval time.Duration
	interval     time.Duration // doubled while cycles fail, reset on success
	nextPollAt   time.Time
	inFlight     bool
}

type Scheduler struct {
	pipeline       *admission.Pipeline
	registry       *Registry
	notifier       admission.ErrorNotifier
	jitterFraction float64
	workerCount    int
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	taskQueue      chan TaskInterface

	mu      sync.Mutex
	pollers map[string]*poller
}

func NewScheduler(pipeline *admission.Pipeline, registry *Registry, notifier admission.ErrorNotifier) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		pipeline:       pipeline,
		registry:       registry,
		notifier:       notifier,
		jitterFraction: cfg.Jitter,
		workerCount:    cfg.WorkerCount,
		ctx:            ctx,
		cancel:         cancel,
		taskQueue:      make(chan TaskInterface, 300),
		pollers:        make(map[string]*poller),
	}
}

// AddCollector registers a collector for periodic polling. The first poll is
// due immediately; later polls follow the jittered interval.
func (s *Scheduler) AddCollector(collector sources.Collector, interval time.Duration) {
	s.registry.Add(collector.Name(), collector.Type())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pollers[collector.Name()] = &poller{
		collector:    collector,
		baseInterval: interval,
		interval:     interval,
		nextPollAt:   time.Now(),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		s.enqueueDueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueDueTasks() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for name, p := range s.pollers {
		if p.inFlight || p.nextPollAt.After(now) {
			continue
		}

		task := NewPollSourceTask(p.collector, s.pipeline, s.registry)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue PollSourceTask", "source", name, "error", err)
			continue
		}

		p.inFlight = true
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err == nil {
		s.finishPoll(task.GetSourceName(), true)
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if task.CanRetry() {
		task.IncrementRetryCount()
		retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}

		slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSourceName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

		// Tracked in the WaitGroup so Stop cannot close the queue while a
		// retry is still pending a send.
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()

			timer := time.NewTimer(retryDelay)
			defer timer.Stop()

			select {
			case <-s.ctx.Done():
				slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
				return
			case <-timer.C:
			}

			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
				s.finishPoll(task.GetSourceName(), false)
			}
		}()
		return
	}

	slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)

	s.registry.RecordFailure(task.GetSourceName())
	if s.notifier != nil {
		s.notifier.NotifyError(s.ctx, task.GetSourceName(), "Poll Failed", err.Error())
	}
	s.finishPoll(task.GetSourceName(), false)
}

// finishPoll closes a poll cycle and schedules the next one. A failed cycle
// doubles the interval; a successful one restores the base interval.
func (s *Scheduler) finishPoll(sourceName string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, found := s.pollers[sourceName]
	if !found {
		return
	}

	p.inFlight = false
	if ok {
		p.interval = p.baseInterval
	} else {
		p.interval *= 2
	}
	p.nextPollAt = time.Now().Add(s.jitteredDelay(p.interval))
}

// jitteredDelay shortens the interval by a random share of jitterFraction so
// sources with equal intervals drift apart instead of polling in lockstep.
func (s *Scheduler) jitteredDelay(interval time.Duration) time.Duration {
	delay := interval - time.Duration(rand.Float64()*s.jitterFraction*float64(interval))
	if delay < minPollDelay {
		delay = minPollDelay
	}
	return delay
}
