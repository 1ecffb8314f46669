// Package analytics records wishlist activity. Writes are best effort: a
// failure is logged and never returned to the caller.
package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/buzdealz-backend/pkg/db/models"
	"github.com/angelmondragon/buzdealz-backend/pkg/enums"
	"github.com/angelmondragon/buzdealz-backend/pkg/logger"
	"github.com/google/uuid"
)

// Event is a single wishlist action.
type Event struct {
	UserID uuid.UUID
	DealID uuid.UUID
	Action enums.AnalyticsAction
}

// Payload is the JSON body published for each recorded event.
type Payload struct {
	EventID    uuid.UUID             `json:"eventId"`
	Action     enums.AnalyticsAction `json:"action"`
	UserID     uuid.UUID             `json:"userId"`
	DealID     uuid.UUID             `json:"dealId"`
	OccurredAt time.Time             `json:"occurredAt"`
}

type eventStore interface {
	Insert(ctx context.Context, event *models.AnalyticsEvent) error
}

// Recorder persists events and optionally publishes them.
type Recorder struct {
	store     eventStore
	publisher Publisher
	logg      *logger.Logger
	timeout   time.Duration
	pending   sync.WaitGroup
}

// RecorderParams groups recorder dependencies. Publisher and Logger are optional.
type RecorderParams struct {
	Store     eventStore
	Publisher Publisher
	Logger    *logger.Logger
}

func NewRecorder(params RecorderParams) (*Recorder, error) {
	if params.Store == nil {
		return nil, errors.New("analytics store is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Recorder{
		store:     params.Store,
		publisher: params.Publisher,
		logg:      logg,
		timeout:   defaultPublishTimeout,
	}, nil
}

// Record writes the event. It never fails the caller.
func (r *Recorder) Record(ctx context.Context, event Event) {
	if r == nil {
		return
	}
	ctx = r.logg.WithFields(ctx, map[string]any{
		"analytics_action": event.Action.String(),
		"deal_id":          event.DealID.String(),
	})

	if !event.Action.IsValid() {
		r.logg.WarnErr(ctx, "analytics.invalid_action", fmt.Errorf("unknown action %q", event.Action))
		return
	}

	row := &models.AnalyticsEvent{
		UserID: event.UserID,
		DealID: event.DealID,
		Action: event.Action,
	}
	if err := r.store.Insert(ctx, row); err != nil {
		r.logg.WarnErr(ctx, "analytics.write_failed", err)
		return
	}

	if r.publisher != nil {
		r.publish(ctx, row)
	}
}

// Close waits for outstanding publish confirmations.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.pending.Wait()
	return nil
}

// publish hands the message to the publisher and confirms it in the
// background. The request path only pays for encoding and enqueueing.
func (r *Recorder) publish(ctx context.Context, row *models.AnalyticsEvent) {
	if err := r.enqueue(ctx, row); err != nil {
		r.logg.WarnErr(ctx, "analytics.publish_failed", err)
	}
}

func (r *Recorder) enqueue(ctx context.Context, row *models.AnalyticsEvent) error {
	data, err := json.Marshal(Payload{
		EventID:    row.ID,
		Action:     row.Action,
		UserID:     row.UserID,
		DealID:     row.DealID,
		OccurredAt: row.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode analytics payload: %w", err)
	}

	msg := &gcppubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_id":   row.ID.String(),
			"event_type": row.Action.String(),
		},
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	result := r.publisher.Publish(publishCtx, msg)
	if result == nil {
		cancel()
		return errors.New("publisher returned nil result")
	}

	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		defer cancel()
		if _, err := result.Get(publishCtx); err != nil {
			r.logg.WarnErr(publishCtx, "analytics.publish_failed", fmt.Errorf("publish analytics event: %w", err))
		}
	}()
	return nil
}
