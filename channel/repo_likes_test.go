package channel_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/streamhub/streamhub/channel"
)

func TestLikesToggle(t *testing.T) {
	ctx := context.Background()

	t.Run("toggles on then off", func(t *testing.T) {
		repos := newTestRepos(t)
		user := uuid.New()
		video := seedVideo(t, repos, uuid.New(), "likeable", true)

		liked, err := repos.Likes().Toggle(ctx, user, video.ID, channel.LikeTargetVideo)
		assert.NoError(t, err)
		assert.True(t, liked)

		count, err := repos.Likes().Count(ctx, video.ID, channel.LikeTargetVideo)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)

		liked, err = repos.Likes().Toggle(ctx, user, video.ID, channel.LikeTargetVideo)
		assert.NoError(t, err)
		assert.False(t, liked)

		count, err = repos.Likes().Count(ctx, video.ID, channel.LikeTargetVideo)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("kinds are independent", func(t *testing.T) {
		repos := newTestRepos(t)
		user := uuid.New()
		target := uuid.New()

		_, err := repos.Likes().Toggle(ctx, user, target, channel.LikeTargetComment)
		assert.NoError(t, err)

		count, err := repos.Likes().Count(ctx, target, channel.LikeTargetVideo)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), count)

		count, err = repos.Likes().Count(ctx, target, channel.LikeTargetComment)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("liked video ids", func(t *testing.T) {
		repos := newTestRepos(t)
		user := uuid.New()

		v1 := seedVideo(t, repos, uuid.New(), "one", true)
		v2 := seedVideo(t, repos, uuid.New(), "two", true)

		_, err := repos.Likes().Toggle(ctx, user, v1.ID, channel.LikeTargetVideo)
		assert.NoError(t, err)
		_, err = repos.Likes().Toggle(ctx, user, v2.ID, channel.LikeTargetVideo)
		assert.NoError(t, err)
		_, err = repos.Likes().Toggle(ctx, user, uuid.New(), channel.LikeTargetTweet)
		assert.NoError(t, err)

		ids, err := repos.Likes().LikedVideoIDs(ctx, user)
		assert.NoError(t, err)
		assert.Len(t, ids, 2)
		assert.Contains(t, ids, v1.ID)
		assert.Contains(t, ids, v2.ID)
	})

	t.Run("count for targets", func(t *testing.T) {
		repos := newTestRepos(t)

		v1 := seedVideo(t, repos, uuid.New(), "one", true)
		v2 := seedVideo(t, repos, uuid.New(), "two", true)

		for i := 0; i < 3; i++ {
			_, err := repos.Likes().Toggle(ctx, uuid.New(), v1.ID, channel.LikeTargetVideo)
			assert.NoError(t, err)
		}
		_, err := repos.Likes().Toggle(ctx, uuid.New(), v2.ID, channel.LikeTargetVideo)
		assert.NoError(t, err)

		total, err := repos.Likes().CountForTargets(ctx, []uuid.UUID{v1.ID, v2.ID}, channel.LikeTargetVideo)
		assert.NoError(t, err)
		assert.Equal(t, int64(4), total)

		total, err = repos.Likes().CountForTargets(ctx, nil, channel.LikeTargetVideo)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})
}

func TestSubscriptions(t *testing.T) {
	ctx := context.Background()

	t.Run("toggle and count", func(t *testing.T) {
		repos := newTestRepos(t)
		channelID := uuid.New()

		alice := uuid.New()
		bob := uuid.New()

		subscribed, err := repos.Subscriptions().Toggle(ctx, alice, channelID)
		assert.NoError(t, err)
		assert.True(t, subscribed)

		_, err = repos.Subscriptions().Toggle(ctx, bob, channelID)
		assert.NoError(t, err)

		count, err := repos.Subscriptions().CountByChannel(ctx, channelID)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), count)

		subscribed, err = repos.Subscriptions().Toggle(ctx, alice, channelID)
		assert.NoError(t, err)
		assert.False(t, subscribed)

		count, err = repos.Subscriptions().CountByChannel(ctx, channelID)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("self subscription is rejected", func(t *testing.T) {
		repos := newTestRepos(t)
		user := uuid.New()

		_, err := repos.Subscriptions().Toggle(ctx, user, user)
		assert.ErrorIs(t, err, channel.ErrSelfSubscription)
	})

	t.Run("membership listings", func(t *testing.T) {
		repos := newTestRepos(t)
		channelID := uuid.New()
		subscriber := uuid.New()

		_, err := repos.Subscriptions().Toggle(ctx, subscriber, channelID)
		assert.NoError(t, err)

		subscribers, err := repos.Subscriptions().SubscriberIDs(ctx, channelID)
		assert.NoError(t, err)
		assert.Equal(t, []uuid.UUID{subscriber}, subscribers)

		channels, err := repos.Subscriptions().ChannelIDs(ctx, subscriber)
		assert.NoError(t, err)
		assert.Equal(t, []uuid.UUID{channelID}, channels)
	})
}
