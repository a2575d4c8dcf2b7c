package tasks

import (
	"time"

	"github.com/svirin/newswatch/app/sources"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background task processing.
// This interface provides task queue management, worker pool control and
// polling cadence management.
// Example usage:
//
//	scheduler := NewScheduler(registry, pipeline, notifier)
//	scheduler.AddCollector(collector, 30*time.Second)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	AddCollector(collector sources.Collector, interval time.Duration)
	EnqueueTask(task TaskInterface) error
}
