package channel_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/streamhub/streamhub/channel"
)

var dbSeq int

func newTestRepos(t *testing.T) channel.RepositoryManager {
	t.Helper()

	dbSeq++
	dsn := fmt.Sprintf("file:channeltest%d?mode=memory&cache=shared", dbSeq)

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	assert.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	for _, model := range []any{
		(*channel.Video)(nil),
		(*channel.Tweet)(nil),
		(*channel.Comment)(nil),
		(*channel.Like)(nil),
		(*channel.Playlist)(nil),
		(*channel.Subscription)(nil),
	} {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		assert.NoError(t, err)
	}

	return channel.NewRepositoryManager(db)
}

func seedVideo(t *testing.T, repos channel.RepositoryManager, ownerID uuid.UUID, title string, published bool) *channel.Video {
	t.Helper()

	video, err := repos.Videos().Publish(context.Background(), &channel.Video{
		OwnerID:      ownerID,
		Title:        title,
		Description:  "about " + title,
		VideoURL:     "https://cdn.test/videos/" + title + ".mp4",
		ThumbnailURL: "https://cdn.test/thumbs/" + title + ".png",
		Duration:     42.5,
		IsPublished:  published,
	})
	assert.NoError(t, err)

	return video
}
