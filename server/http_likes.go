package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/streamhub/streamhub/auth"
	"github.com/streamhub/streamhub/channel"
)

func (s *Server) toggleVideoLike(c *fiber.Ctx) error {
	return s.toggleLike(c, "videoId", channel.LikeTargetVideo, func(id uuid.UUID) error {
		_, err := s.content.Videos().GetByID(c.UserContext(), id)
		return err
	})
}

func (s *Server) toggleCommentLike(c *fiber.Ctx) error {
	return s.toggleLike(c, "commentId", channel.LikeTargetComment, func(id uuid.UUID) error {
		_, err := s.content.Comments().GetByID(c.UserContext(), id)
		return err
	})
}

func (s *Server) toggleTweetLike(c *fiber.Ctx) error {
	return s.toggleLike(c, "tweetId", channel.LikeTargetTweet, func(id uuid.UUID) error {
		_, err := s.content.Tweets().GetByID(c.UserContext(), id)
		return err
	})
}

func (s *Server) toggleLike(c *fiber.Ctx, param string, kind channel.LikeTarget, exists func(uuid.UUID) error) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.ErrUnauthorized
	}

	targetID, err := paramUUID(c, param)
	if err != nil {
		return err
	}

	if err := exists(targetID); err != nil {
		return err
	}

	liked, err := s.content.Likes().Toggle(c.UserContext(), user.ID, targetID, kind)
	if err != nil {
		return err
	}

	message := "like removed"
	if liked {
		message = "like added"
	}

	return respond(c, fiber.StatusOK, fiber.Map{"liked": liked}, message)
}

func (s *Server) likedVideos(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.ErrUnauthorized
	}

	ids, err := s.content.Likes().LikedVideoIDs(c.UserContext(), user.ID)
	if err != nil {
		return err
	}

	videos, err := s.content.Videos().ByIDs(c.UserContext(), ids)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, videos, "liked videos fetched")
}
