package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/streamhub/streamhub/auth"
	"github.com/streamhub/streamhub/channel"
)

func (s *Server) channelStats(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.ErrUnauthorized
	}

	stats, err := s.dash.Stats(c.UserContext(), user.ID)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, stats, "channel stats fetched")
}

// channelVideos lists the caller's own uploads, drafts included.
func (s *Server) channelVideos(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.ErrUnauthorized
	}

	opts := channel.ListVideosOptions{
		Page:               c.QueryInt("page", 1),
		Limit:              c.QueryInt("limit", 10),
		OwnerID:            user.ID,
		IncludeUnpublished: true,
	}

	videos, total, err := s.content.Videos().List(c.UserContext(), opts)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, channel.Page[*channel.Video]{
		Items: videos,
		Total: total,
		Page:  opts.Page,
		Limit: opts.Limit,
	}, "channel videos fetched")
}
