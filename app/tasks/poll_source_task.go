package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/svirin/newswatch/app/admission"
	"github.com/svirin/newswatch/app/sources"
)

type PollSourceTask struct {
	Task
	collector sources.Collector
	pipeline  *admission.Pipeline
	registry  *Registry
}

func NewPollSourceTask(collector sources.Collector, pipeline *admission.Pipeline, registry *Registry) *PollSourceTask {
	return &PollSourceTask{
		Task:      NewTask(TaskTypePollSource, collector.Name()),
		collector: collector,
		pipeline:  pipeline,
		registry:  registry,
	}
}

func (t *PollSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	items, err := t.collector.Collect(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect from source: %w", err)
	}

	var counts PollCounts
	for _, item := range items {
		switch t.pipeline.Evaluate(ctx, item) {
		case admission.Admit:
			counts.Admitted++
		case admission.DuplicateReject:
			counts.Duplicates++
		case admission.StaleReject:
			counts.Stale++
		case admission.UndatedReject:
			counts.Undated++
		case admission.DeliveryFailed:
			counts.Failed++
		}
	}

	t.registry.RecordPoll(t.SourceName, counts)

	slog.Info("Task completed",
		"type", "PollSource",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"total", len(items),
		"admitted", counts.Admitted,
		"duplicates", counts.Duplicates,
		"stale", counts.Stale,
		"undated", counts.Undated,
		"failed", counts.Failed)

	return nil
}
