// Package correlate decides whether a container access should raise an alert.
//
// Evaluate consults the in-memory index first so that accesses to containers
// no watched user ever stocked cost nothing. Only an index hit triggers a
// targeted history query, whose stockers (minus the actor) become the alert.
package correlate

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"stashwatch/internal/alert"
	"stashwatch/internal/event"
	"stashwatch/internal/history"
	"stashwatch/internal/watch"
)

const DefaultLookback = 28 * 24 * time.Hour

// Locator answers whether a location was stocked by a watched user.
type Locator interface {
	Lookup(loc history.Location) bool
}

// Notifier accepts an alert for delivery.
type Notifier interface {
	Notify(ctx context.Context, a alert.Alert) error
}

type Config struct {
	Index    Locator
	History  history.Querier
	Watch    watch.List
	Lookback time.Duration
	Notifier Notifier
	// Tracer defaults to the global provider's "stashwatch/correlate" tracer.
	Tracer trace.Tracer
}

type Correlator struct {
	logger   *zap.Logger
	index    Locator
	history  history.Querier
	watch    watch.List
	lookback time.Duration
	notifier Notifier
	tracer   trace.Tracer
}

func New(logger *zap.Logger, cfg Config) (*Correlator, error) {
	if cfg.Index == nil {
		return nil, errors.New("correlator requires an index")
	}
	if cfg.History == nil {
		return nil, errors.New("correlator requires a history querier")
	}
	if cfg.Watch.Len() == 0 {
		return nil, watch.ErrEmpty
	}
	lookback := cfg.Lookback
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer("stashwatch/correlate")
	}
	return &Correlator{
		logger:   logger.Named("correlator"),
		index:    cfg.Index,
		history:  cfg.History,
		watch:    cfg.Watch,
		lookback: lookback,
		notifier: cfg.Notifier,
		tracer:   tracer,
	}, nil
}

// Evaluate runs one access event through the index, the targeted query and
// the notifier. It never returns an error; failures are reported through the
// outcome and the log.
func (c *Correlator) Evaluate(ctx context.Context, ev event.Access) Outcome {
	ctx, span := c.tracer.Start(ctx, "correlator.evaluate", trace.WithAttributes(
		attribute.String("event.kind", ev.Kind.String()),
		attribute.String("location.world", ev.Location.World),
	))
	defer span.End()

	outcome := c.evaluate(ctx, ev)

	span.SetAttributes(attribute.String("outcome", outcome.String()))
	if outcome == OutcomeQueryFailed || outcome == OutcomeNotifyFailed {
		span.SetStatus(codes.Error, outcome.String())
	}
	eventsTotal.WithLabelValues(outcome.String()).Inc()
	return outcome
}

func (c *Correlator) evaluate(ctx context.Context, ev event.Access) Outcome {
	if !ev.Kind.Valid() {
		return OutcomeIgnored
	}
	if !c.index.Lookup(ev.Location) {
		return OutcomeNotIndexed
	}

	users, err := c.Attribute(ctx, ev.Actor, ev.Location)
	if err != nil {
		c.logger.Warn("Attribution query failed",
			zap.String("actor", ev.Actor),
			zap.Stringer("location", ev.Location),
			zap.Error(err),
		)
		return OutcomeQueryFailed
	}
	if len(users) == 0 {
		return OutcomeNoAttribution
	}

	a := alert.New(ev, users)
	c.logger.Warn(a.Text, zap.String("alert_id", a.ID))

	if c.notifier == nil {
		return OutcomeAlerted
	}
	if err := c.notifier.Notify(ctx, a); err != nil {
		c.logger.Error("Alert hand-off failed",
			zap.String("alert_id", a.ID),
			zap.String("content", a.Text),
			zap.Error(err),
		)
		return OutcomeNotifyFailed
	}
	return OutcomeAlerted
}

// Attribute returns the watched users who stocked the container at loc within
// the lookback window, distinct in first-seen order and excluding actor.
func (c *Correlator) Attribute(ctx context.Context, actor string, loc history.Location) ([]string, error) {
	start := time.Now()
	records, err := c.history.Query(ctx, history.Query{
		Filter:   history.ItemStored(),
		Users:    c.watch.Users(),
		Location: &loc,
		Lookback: c.lookback,
	})
	queryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	return attributed(records, actor), nil
}

func attributed(records []history.Record, actor string) []string {
	seen := make(map[string]struct{}, len(records))
	users := make([]string, 0, len(records))
	for _, r := range records {
		if r.User == actor {
			continue
		}
		if _, dup := seen[r.User]; dup {
			continue
		}
		seen[r.User] = struct{}{}
		users = append(users, r.User)
	}
	return users
}

func (c *Correlator) Lookback() time.Duration {
	return c.lookback
}

func (c *Correlator) Watch() watch.List {
	return c.watch
}
