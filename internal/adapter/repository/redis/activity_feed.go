package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/budgetplanner/internal/domain"
)

// ActivityFeed implements usecase.ActivityFeed over a Redis pub/sub channel.
// Messages are JSON encoded domain.ActivityUpdate values.
type ActivityFeed struct {
	client  redis.UniversalClient
	channel string
	logger  zerolog.Logger
}

// NewActivityFeed creates a new ActivityFeed.
func NewActivityFeed(client redis.UniversalClient, channel string, logger zerolog.Logger) *ActivityFeed {
	return &ActivityFeed{
		client:  client,
		channel: channel,
		logger:  logger.With().Str("component", "activity_feed").Str("channel", channel).Logger(),
	}
}

// Publish sends an update to every subscriber.
func (f *ActivityFeed) Publish(ctx context.Context, update domain.ActivityUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return err
	}

	return f.client.Publish(ctx, f.channel, data).Err()
}

// Subscribe delivers updates to handle until ctx is done. Malformed messages
// and handler errors are logged and skipped.
func (f *ActivityFeed) Subscribe(ctx context.Context, handle func(context.Context, domain.ActivityUpdate) error) error {
	sub := f.client.Subscribe(ctx, f.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", f.channel, err)
	}

	f.logger.Info().Msg("activity feed subscribed")

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			var update domain.ActivityUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				f.logger.Warn().Err(err).Msg("dropping malformed activity update")
				continue
			}

			if err := handle(ctx, update); err != nil {
				f.logger.Error().
					Err(err).
					Str("workspace_id", update.WorkspaceID).
					Str("month", update.Month.String()).
					Msg("failed to handle activity update")
			}
		}
	}
}
