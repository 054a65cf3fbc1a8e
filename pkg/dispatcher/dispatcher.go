package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/async"
	"github.com/dmitrymomot/notifykit/pkg/channels"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/prefs"
	"github.com/dmitrymomot/notifykit/pkg/schedule"
	"github.com/dmitrymomot/notifykit/pkg/tracker"
)

// fallbackTitlePrefix marks a fallback email so the user understands why a
// push notification arrived in their inbox instead.
const fallbackTitlePrefix = "[Missed notification] "

// Dispatcher orchestrates one notification request end to end.
type Dispatcher struct {
	resolver prefs.Resolver
	mapper   prefs.CategoryMapper
	registry *channels.Registry
	queue    schedule.Queue
	track    tracker.Log
	table    notification.ChannelTable
	log      *slog.Logger
	now      func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for degraded-path and background-task
// reporting.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// WithChannelTable overrides the static per-category fallback table.
func WithChannelTable(table notification.ChannelTable) Option {
	return func(d *Dispatcher) { d.table = table }
}

// WithClock overrides the time source for digest boundary math. Tests only.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// New wires a Dispatcher to its collaborators.
func New(resolver prefs.Resolver, mapper prefs.CategoryMapper, registry *channels.Registry, queue schedule.Queue, track tracker.Log, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		resolver: resolver,
		mapper:   mapper,
		registry: registry,
		queue:    queue,
		track:    track,
		table:    notification.DefaultChannelTable(),
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// channelDecision pairs a channel with its preference verdict.
type channelDecision struct {
	channel  notification.Channel
	decision prefs.Decision
}

// Dispatch runs one notification request through the full pipeline and
// returns its aggregate outcome. It never returns an error: every failure
// mode is captured inside the DeliveryResult.
func (d *Dispatcher) Dispatch(ctx context.Context, req notification.Request) notification.DeliveryResult {
	notifID := uuid.New().String()
	category := d.mapper.MapTypeToCategory(req.Type)

	targets := d.determineChannels(ctx, req, category)
	if len(targets) == 0 {
		return d.blocked(notifID, req, "no_channels_available")
	}

	bypass := d.mapper.ShouldBypassPreferences(req.Type) || req.Priority == notification.PriorityCritical

	decisions := d.evaluatePreferences(ctx, req, category, targets, bypass)

	if !bypass {
		// Quiet hours take precedence over digests: the first deferred
		// decision schedules the whole notification.
		for _, cd := range decisions {
			if cd.decision.ScheduleFor == nil {
				continue
			}
			reason := cd.decision.Reason
			if reason == "" {
				reason = "quiet_hours"
			}
			d.enqueue(ctx, notifID, req, schedule.Entry{
				UserID:       req.UserID,
				Type:         req.Type,
				Title:        req.Title,
				Body:         req.Body,
				Data:         req.Data,
				Priority:     req.Priority,
				Kind:         schedule.KindQuietHours,
				ScheduledFor: *cd.decision.ScheduleFor,
				CreatedAt:    d.now(),
			})
			return d.scheduled(notifID, req, reason)
		}

		for _, cd := range decisions {
			freq := cd.decision.Frequency
			if freq == "" || freq == schedule.FrequencyInstant {
				continue
			}
			d.enqueue(ctx, notifID, req, schedule.Entry{
				UserID:       req.UserID,
				Type:         req.Type,
				Title:        req.Title,
				Body:         req.Body,
				Data:         req.Data,
				Priority:     req.Priority,
				Kind:         schedule.KindDigest,
				Frequency:    freq,
				ScheduledFor: schedule.NextDigest(d.now(), freq),
				CreatedAt:    d.now(),
			})
			return d.scheduled(notifID, req, fmt.Sprintf("queued_for_%s_digest", freq))
		}
	}

	var allowed []notification.Channel
	for _, cd := range decisions {
		if cd.decision.Send {
			allowed = append(allowed, cd.channel)
		}
	}
	if len(allowed) == 0 {
		return d.blocked(notifID, req, "blocked_by_preferences")
	}

	results := d.fanOut(ctx, notifID, category, req, allowed)

	d.recordDelivery(ctx, notifID, req, results)
	d.maybeFallback(ctx, notifID, category, req, results)

	success := false
	for _, r := range results {
		if r.Success {
			success = true
			break
		}
	}
	return notification.DeliveryResult{
		NotificationID: notifID,
		UserID:         req.UserID,
		Success:        success,
		Channels:       results,
		Timestamp:      d.now(),
	}
}

// determineChannels picks the target channel set: the explicit request list
// verbatim, the user's stored preferences, or the static fallback table when
// the preference source fails or has nothing stored. in_app rides along
// unconditionally on the preference-derived path.
func (d *Dispatcher) determineChannels(ctx context.Context, req notification.Request, category string) []notification.Channel {
	if len(req.Channels) > 0 {
		out := make([]notification.Channel, len(req.Channels))
		copy(out, req.Channels)
		return out
	}

	stored, err := d.resolver.ChannelPreferences(ctx, req.UserID, category)
	if err != nil {
		d.log.LogAttrs(ctx, slog.LevelWarn, "channel preference lookup failed, using default table",
			logger.UserID(req.UserID),
			logger.Error(err),
		)
		return d.table.For(category)
	}
	if stored == nil {
		return d.table.For(category)
	}

	var out []notification.Channel
	for _, ch := range []notification.Channel{notification.ChannelPush, notification.ChannelEmail, notification.ChannelSMS} {
		if stored[ch] {
			out = append(out, ch)
		}
	}
	return append(out, notification.ChannelInApp)
}

// evaluatePreferences resolves every channel's verdict in parallel. A
// resolver failure degrades to "send": a broken preference source must not
// block notifications.
func (d *Dispatcher) evaluatePreferences(ctx context.Context, req notification.Request, category string, targets []notification.Channel, bypass bool) []channelDecision {
	futures := make([]*async.Future[prefs.Decision], len(targets))
	for i, ch := range targets {
		futures[i] = async.Go(ctx, func(ctx context.Context) (prefs.Decision, error) {
			return d.resolver.ShouldSend(ctx, req.UserID, category, ch, bypass)
		})
	}

	decisions := make([]channelDecision, len(targets))
	for i, outcome := range async.JoinAll(futures...) {
		decisions[i] = channelDecision{channel: targets[i], decision: outcome.Value}
		if outcome.Err != nil {
			d.log.LogAttrs(ctx, slog.LevelWarn, "preference evaluation failed, allowing channel",
				logger.UserID(req.UserID),
				logger.Channel(string(targets[i])),
				logger.Error(outcome.Err),
			)
			decisions[i].decision = prefs.Decision{Send: true}
		}
	}
	return decisions
}

// fanOut sends through every allowed channel concurrently and collects the
// results in channel order. A panicking adapter yields a failed result for
// its channel only.
func (d *Dispatcher) fanOut(ctx context.Context, notifID, category string, req notification.Request, allowed []notification.Channel) []notification.ChannelResult {
	payload := channels.Payload{
		NotificationID: notifID,
		Category:       category,
		Request:        req,
	}

	futures := make([]*async.Future[notification.ChannelResult], len(allowed))
	for i, ch := range allowed {
		futures[i] = async.Go(ctx, func(ctx context.Context) (notification.ChannelResult, error) {
			return d.registry.Send(ctx, ch, payload), nil
		})
	}

	results := make([]notification.ChannelResult, len(allowed))
	for i, outcome := range async.JoinAll(futures...) {
		if outcome.Err != nil {
			results[i] = notification.ChannelResult{
				Channel:     allowed[i],
				Err:         outcome.Err.Error(),
				AttemptedAt: d.now(),
			}
			continue
		}
		results[i] = outcome.Value
	}
	return results
}

// enqueue upserts a deferred entry. Queue failures log and are swallowed:
// scheduling persistence is not safety-critical.
func (d *Dispatcher) enqueue(ctx context.Context, notifID string, req notification.Request, entry schedule.Entry) {
	if err := d.queue.Upsert(ctx, entry); err != nil {
		d.log.LogAttrs(ctx, slog.LevelWarn, "failed to persist schedule entry",
			logger.NotificationID(notifID),
			logger.UserID(req.UserID),
			logger.Error(err),
		)
	}
}

// recordDelivery writes the delivery log entry in the background.
func (d *Dispatcher) recordDelivery(ctx context.Context, notifID string, req notification.Request, results []notification.ChannelResult) {
	record := tracker.Delivery{
		NotificationID: notifID,
		UserID:         req.UserID,
		Type:           req.Type,
		Title:          req.Title,
		Body:           req.Body,
		Channels:       results,
		Status:         tracker.DeriveStatus(results),
		RecordedAt:     d.now(),
	}
	async.Fire(ctx, d.log, "delivery-tracking", func(ctx context.Context) error {
		return d.track.Record(ctx, record)
	})
}

// maybeFallback fires the one-hop push to email fallback: push attempted and
// failed, email not already attempted, priority above the lowest tier. The
// fallback outcome never appears in the public result.
func (d *Dispatcher) maybeFallback(ctx context.Context, notifID, category string, req notification.Request, results []notification.ChannelResult) {
	if req.Priority == notification.PriorityLow {
		return
	}

	pushFailed := false
	for _, r := range results {
		switch r.Channel {
		case notification.ChannelPush:
			pushFailed = !r.Success
		case notification.ChannelEmail:
			return // email already attempted as a primary channel
		}
	}
	if !pushFailed {
		return
	}

	fallbackReq := req
	fallbackReq.Title = fallbackTitlePrefix + req.Title
	payload := channels.Payload{
		NotificationID: notifID,
		Category:       category,
		Request:        fallbackReq,
	}

	async.Fire(ctx, d.log, "push-email-fallback", func(ctx context.Context) error {
		res := d.registry.Send(ctx, notification.ChannelEmail, payload)
		if !res.Success {
			return fmt.Errorf("fallback email failed: %s", res.Err)
		}
		d.log.LogAttrs(ctx, slog.LevelInfo, "fallback email delivered",
			logger.NotificationID(notifID),
			logger.UserID(req.UserID),
			logger.Provider(res.Provider),
		)
		return nil
	})
}

func (d *Dispatcher) blocked(notifID string, req notification.Request, reason string) notification.DeliveryResult {
	return notification.DeliveryResult{
		NotificationID: notifID,
		UserID:         req.UserID,
		Blocked:        true,
		Reason:         reason,
		Timestamp:      d.now(),
	}
}

func (d *Dispatcher) scheduled(notifID string, req notification.Request, reason string) notification.DeliveryResult {
	return notification.DeliveryResult{
		NotificationID: notifID,
		UserID:         req.UserID,
		Scheduled:      true,
		Reason:         reason,
		Timestamp:      d.now(),
	}
}
