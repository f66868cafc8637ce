// Package channel holds the content side of the platform: videos, tweets,
// comments, likes, playlists, and subscriptions, plus the aggregate
// queries behind the channel dashboard.
package channel

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Video is a published (or drafted) upload. Media fields hold object-store
// URLs; the binary itself never touches the database.
type Video struct {
	bun.BaseModel `bun:"table:videos,alias:vid"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id"`
	OwnerID       uuid.UUID  `bun:"owner_id,notnull,type:uuid" json:"owner_id"`
	Title         string     `bun:"title,notnull" json:"title"`
	Description   string     `bun:"description,notnull" json:"description"`
	VideoURL      string     `bun:"video_url,notnull" json:"video_url"`
	ThumbnailURL  string     `bun:"thumbnail_url,notnull" json:"thumbnail_url"`
	Duration      float64    `bun:"duration" json:"duration"`
	Views         int64      `bun:"views,default:0" json:"views"`
	IsPublished   bool       `bun:"is_published,notnull" json:"is_published"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Tweet is a short text post on a channel.
type Tweet struct {
	bun.BaseModel `bun:"table:tweets,alias:twt"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id"`
	OwnerID       uuid.UUID  `bun:"owner_id,notnull,type:uuid" json:"owner_id"`
	Content       string     `bun:"content,notnull" json:"content"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Comment is attached to a video.
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:cmt"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id"`
	VideoID       uuid.UUID  `bun:"video_id,notnull,type:uuid" json:"video_id"`
	OwnerID       uuid.UUID  `bun:"owner_id,notnull,type:uuid" json:"owner_id"`
	Content       string     `bun:"content,notnull" json:"content"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// LikeTarget names the one content kind a like row points at.
type LikeTarget = string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetComment LikeTarget = "comment"
	LikeTargetTweet   LikeTarget = "tweet"
)

// Like records one user liking one target; the (user, kind, target) triple
// is unique so toggling is a delete-or-insert.
type Like struct {
	bun.BaseModel `bun:"table:likes,alias:lik"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid,unique:like_once" json:"user_id"`
	TargetKind    LikeTarget `bun:"target_kind,notnull,unique:like_once" json:"target_kind"`
	TargetID      uuid.UUID  `bun:"target_id,notnull,type:uuid,unique:like_once" json:"target_id"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Playlist is an owner-curated ordered list of video ids.
type Playlist struct {
	bun.BaseModel `bun:"table:playlists,alias:pls"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id"`
	OwnerID       uuid.UUID  `bun:"owner_id,notnull,type:uuid" json:"owner_id"`
	Name          string     `bun:"name,notnull" json:"name"`
	Description   string     `bun:"description,notnull" json:"description"`
	VideoIDs      []string   `bun:"video_ids,type:jsonb" json:"video_ids"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Subscription links a subscriber to a channel (both user ids); the pair
// is unique.
type Subscription struct {
	bun.BaseModel `bun:"table:subscriptions,alias:sub"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id"`
	SubscriberID  uuid.UUID  `bun:"subscriber_id,notnull,type:uuid,unique:sub_once" json:"subscriber_id"`
	ChannelID     uuid.UUID  `bun:"channel_id,notnull,type:uuid,unique:sub_once" json:"channel_id"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// ChannelStats is the dashboard aggregation result.
type ChannelStats struct {
	TotalVideos      int64 `json:"total_videos"`
	TotalViews       int64 `json:"total_views"`
	TotalSubscribers int64 `json:"total_subscribers"`
	TotalLikes       int64 `json:"total_likes"`
}

// Page bundles a list result with its total for offset pagination.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}
