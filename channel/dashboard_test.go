package channel_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/streamhub/streamhub/channel"
)

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()

	t.Run("empty channel", func(t *testing.T) {
		repos := newTestRepos(t)
		dash := channel.NewDashboard(repos)

		stats, err := dash.Stats(ctx, uuid.New())
		assert.NoError(t, err)
		assert.Equal(t, &channel.ChannelStats{}, stats)
	})

	t.Run("aggregates across videos", func(t *testing.T) {
		repos := newTestRepos(t)
		dash := channel.NewDashboard(repos)
		owner := uuid.New()

		v1 := seedVideo(t, repos, owner, "one", true)
		v2 := seedVideo(t, repos, owner, "two", false)

		// 3 views on the first video
		for i := 0; i < 3; i++ {
			_, err := repos.Videos().GetAndCountView(ctx, v1.ID)
			assert.NoError(t, err)
		}

		// likes on both, plus one on somebody else's video
		_, err := repos.Likes().Toggle(ctx, uuid.New(), v1.ID, channel.LikeTargetVideo)
		assert.NoError(t, err)
		_, err = repos.Likes().Toggle(ctx, uuid.New(), v2.ID, channel.LikeTargetVideo)
		assert.NoError(t, err)
		other := seedVideo(t, repos, uuid.New(), "other", true)
		_, err = repos.Likes().Toggle(ctx, uuid.New(), other.ID, channel.LikeTargetVideo)
		assert.NoError(t, err)

		// two subscribers
		_, err = repos.Subscriptions().Toggle(ctx, uuid.New(), owner)
		assert.NoError(t, err)
		_, err = repos.Subscriptions().Toggle(ctx, uuid.New(), owner)
		assert.NoError(t, err)

		stats, err := dash.Stats(ctx, owner)
		assert.NoError(t, err)
		assert.Equal(t, &channel.ChannelStats{
			TotalVideos:      2,
			TotalViews:       3,
			TotalSubscribers: 2,
			TotalLikes:       2,
		}, stats)
	})
}
