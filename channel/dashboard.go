package channel

import (
	"context"

	"github.com/google/uuid"
)

// Dashboard aggregates the per-channel stats shown to a channel owner.
type Dashboard struct {
	repo RepositoryManager
}

func NewDashboard(repo RepositoryManager) *Dashboard {
	return &Dashboard{repo: repo}
}

// Stats collects totals for the given channel: video count, accumulated
// views, subscriber count, and likes across all of the channel's videos.
func (d *Dashboard) Stats(ctx context.Context, channelID uuid.UUID) (*ChannelStats, error) {
	stats := &ChannelStats{}

	totalVideos, err := d.repo.Videos().CountByOwner(ctx, channelID)
	if err != nil {
		return nil, err
	}
	stats.TotalVideos = totalVideos

	totalViews, err := d.repo.Videos().SumViewsByOwner(ctx, channelID)
	if err != nil {
		return nil, err
	}
	stats.TotalViews = totalViews

	totalSubscribers, err := d.repo.Subscriptions().CountByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	stats.TotalSubscribers = totalSubscribers

	videoIDs, err := d.repo.Videos().IDsByOwner(ctx, channelID)
	if err != nil {
		return nil, err
	}

	totalLikes, err := d.repo.Likes().CountForTargets(ctx, videoIDs, LikeTargetVideo)
	if err != nil {
		return nil, err
	}
	stats.TotalLikes = totalLikes

	return stats, nil
}
