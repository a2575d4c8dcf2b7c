package admission

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/svirin/newswatch/app/dedup"
)

// Recorder persists an admitted item after delivery. Optional.
type Recorder interface {
	RecordPost(ctx context.Context, source, link, body, fingerprint string) error
}

// Pipeline turns one candidate item into a single admit-or-drop decision.
// All collectors share one pipeline; the duplicate-check / deliver /
// mark-posted sequence runs under a single lock so two collectors racing on
// the same fingerprint cannot both admit it.
type Pipeline struct {
	mu       sync.Mutex
	policy   *Policy
	cache    *dedup.Cache
	delivery Delivery
	recorder Recorder
	notifier ErrorNotifier

	windowHours int
	strictToday bool
	checkChars  int
}

func NewPipeline(policy *Policy, cache *dedup.Cache, delivery Delivery, recorder Recorder,
	notifier ErrorNotifier, windowHours int, strictToday bool, checkChars int) *Pipeline {
	return &Pipeline{
		policy:      policy,
		cache:       cache,
		delivery:    delivery,
		recorder:    recorder,
		notifier:    notifier,
		windowHours: windowHours,
		strictToday: strictToday,
		checkChars:  checkChars,
	}
}

// Evaluate runs the admission checks in their fixed order: duplicates first
// (cheapest, avoids re-parsing dates for known items), then freshness, then
// delivery. The item is marked as posted only after a confirmed send, so a
// failed delivery stays eligible for a later retry.
func (p *Pipeline) Evaluate(ctx context.Context, item Item) Verdict {
	fullText := item.FullText()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cache.IsDuplicate(fullText) {
		slog.Debug("Skipping duplicate", "source", item.Source, "title", truncate(item.Title, 50))
		return DuplicateReject
	}

	if !p.policy.CheckNewsDate(fullText, item.Link, item.RawDate, p.windowHours, p.strictToday) {
		if !p.policy.HasDate(fullText, item.Link, item.RawDate) {
			slog.Debug("Skipping undated item", "source", item.Source, "title", truncate(item.Title, 50))
			return UndatedReject
		}
		slog.Debug("Skipping stale item", "source", item.Source, "title", truncate(item.Title, 50))
		return StaleReject
	}

	if err := p.delivery.SendNews(ctx, FormatPost(item)); err != nil {
		slog.Error("Delivery failed", "source", item.Source, "title", truncate(item.Title, 50), "error", err)
		if p.notifier != nil {
			p.notifier.NotifyError(ctx, item.Source, "Delivery Failed", err.Error())
		}
		return DeliveryFailed
	}

	p.cache.MarkPosted(fullText)

	if p.recorder != nil {
		fp := dedup.Fingerprint(fullText, p.checkChars)
		if err := p.recorder.RecordPost(ctx, item.Source, item.Link, fullText, fp); err != nil {
			slog.Warn("Failed to record delivered post", "source", item.Source, "error", err)
		}
	}

	slog.Info("Item admitted", "source", item.Source, "title", truncate(item.Title, 50))
	return Admit
}

// FormatPost renders the outbound message: a bold source line, the link line
// (possibly empty), then the item text.
func FormatPost(item Item) string {
	return fmt.Sprintf("<b>%s</b>\n%s\n%s", item.Source, item.Link, item.FullText())
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
