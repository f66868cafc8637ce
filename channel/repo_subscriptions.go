package channel

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ErrSelfSubscription = errors.New("cannot subscribe to your own channel", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode("SELF_SUBSCRIPTION")

// Subscriptions stores subscriber/channel relations between users.
type Subscriptions interface {
	// Toggle flips the subscription state and reports whether the
	// subscriber now follows the channel.
	Toggle(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error)
	CountByChannel(ctx context.Context, channelID uuid.UUID) (int64, error)
	SubscriberIDs(ctx context.Context, channelID uuid.UUID) ([]uuid.UUID, error)
	ChannelIDs(ctx context.Context, subscriberID uuid.UUID) ([]uuid.UUID, error)
}

type subscriptions struct {
	db *bun.DB
}

var _ Subscriptions = (*subscriptions)(nil)

func NewSubscriptionsRepository(db *bun.DB) Subscriptions {
	return &subscriptions{db: db}
}

func (r *subscriptions) Toggle(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	if subscriberID == channelID {
		return false, ErrSelfSubscription
	}

	res, err := r.db.NewDelete().Model((*Subscription)(nil)).
		Where("subscriber_id = ?", subscriberID).
		Where("channel_id = ?", channelID).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		return false, nil
	}

	sub := &Subscription{
		ID:           uuid.New(),
		SubscriberID: subscriberID,
		ChannelID:    channelID,
	}

	if _, err := r.db.NewInsert().Model(sub).Exec(ctx); err != nil {
		return false, err
	}

	return true, nil
}

func (r *subscriptions) CountByChannel(ctx context.Context, channelID uuid.UUID) (int64, error) {
	count, err := r.db.NewSelect().Model((*Subscription)(nil)).
		Where("channel_id = ?", channelID).
		Count(ctx)

	return int64(count), err
}

func (r *subscriptions) SubscriberIDs(ctx context.Context, channelID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.NewSelect().Model((*Subscription)(nil)).
		Column("subscriber_id").
		Where("channel_id = ?", channelID).
		Order("created_at DESC").
		Scan(ctx, &ids)

	return ids, err
}

func (r *subscriptions) ChannelIDs(ctx context.Context, subscriberID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.NewSelect().Model((*Subscription)(nil)).
		Column("channel_id").
		Where("subscriber_id = ?", subscriberID).
		Order("created_at DESC").
		Scan(ctx, &ids)

	return ids, err
}
