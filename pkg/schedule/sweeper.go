package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/vbwd/pluginkit/pkg/async"
	"github.com/vbwd/pluginkit/pkg/events"
)

// Subscription is the slice of subscription state the sweeper needs.
type Subscription struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ExpiresAt time.Time
}

// ExpiredSource supplies subscriptions past their expiry and records the
// status change once the sweeper has processed them.
type ExpiredSource interface {
	// ListExpired returns active subscriptions whose expiry is at or before
	// now.
	ListExpired(ctx context.Context, now time.Time) ([]Subscription, error)
	// MarkExpired transitions the subscription to expired status.
	MarkExpired(ctx context.Context, id uuid.UUID) error
}

// Emitter is the part of the domain dispatcher the sweeper uses.
type Emitter interface {
	Emit(event events.DomainEvent) events.EventResult
}

// Sweeper expires overdue subscriptions on a cron schedule. Each expired
// subscription is marked in the source and announced with a
// subscription.expired event.
type Sweeper struct {
	source   ExpiredSource
	emitter  Emitter
	schedule string
	workers  int
	cron     *cron.Cron
	log      *logrus.Logger
}

// NewSweeper creates a sweeper. schedule is a standard five-field cron
// expression; workers bounds how many subscriptions are processed
// concurrently per run.
func NewSweeper(source ExpiredSource, emitter Emitter, schedule string, workers int, log *logrus.Logger) *Sweeper {
	if workers <= 0 {
		workers = 4
	}
	if log == nil {
		log = logrus.New()
	}
	return &Sweeper{
		source:   source,
		emitter:  emitter,
		schedule: schedule,
		workers:  workers,
		log:      log,
	}
}

// Start registers the cron job and begins scheduling runs.
func (s *Sweeper) Start(ctx context.Context) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.schedule, func() {
		if n, err := s.Sweep(ctx); err != nil {
			s.log.WithError(err).Error("expiry sweep failed")
		} else if n > 0 {
			s.log.WithField("expired", n).Info("expiry sweep completed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.log.WithField("schedule", s.schedule).Info("expiry sweeper started")
	return nil
}

// Stop halts scheduling and waits for an in-flight run to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Sweep runs a single pass: every overdue subscription is marked expired and
// a subscription.expired event is emitted for it. Returns the number of
// subscriptions expired. Per-subscription failures are logged and do not
// abort the rest of the batch.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := time.Now().UTC()

	expired, err := s.source.ListExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired subscriptions: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	errs := async.Batch(ctx, expired, s.workers, "expiry sweep", 30*time.Second,
		func(ctx context.Context, sub Subscription) error {
			if err := s.source.MarkExpired(ctx, sub.ID); err != nil {
				return fmt.Errorf("failed to mark subscription %s expired: %w", sub.ID, err)
			}

			result := s.emitter.Emit(events.NewSubscriptionExpired(sub.ID, sub.UserID, now))
			if !result.Success && result.ErrType != events.ErrTypeNoHandler {
				s.log.WithFields(logrus.Fields{
					"subscription_id": sub.ID,
					"error":           result.Err,
				}).Warn("subscription.expired handlers reported failure")
			}
			return nil
		})

	for _, err := range errs {
		s.log.WithError(err).Error("expiry sweep item failed")
	}

	return len(expired) - len(errs), nil
}
