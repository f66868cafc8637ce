package server

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/streamhub/streamhub/auth"
	"github.com/streamhub/streamhub/channel"
)

type commentRequest struct {
	Content string `json:"content"`
}

func (r commentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.Length(1, 1000)),
	)
}

func (s *Server) listComments(c *fiber.Ctx) error {
	videoID, err := paramUUID(c, "videoId")
	if err != nil {
		return err
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	comments, total, err := s.content.Comments().ListByVideo(c.UserContext(), videoID, page, limit)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, channel.Page[*channel.Comment]{
		Items: comments,
		Total: total,
		Page:  page,
		Limit: limit,
	}, "comments fetched")
}

func (s *Server) addComment(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.ErrUnauthorized
	}

	videoID, err := paramUUID(c, "videoId")
	if err != nil {
		return err
	}

	// 404 before 400: commenting on a missing video is a lookup failure.
	if _, err := s.content.Videos().GetByID(c.UserContext(), videoID); err != nil {
		return err
	}

	req := commentRequest{}
	if err := c.BodyParser(&req); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := req.Validate(); err != nil {
		return err
	}

	comment, err := s.content.Comments().Add(c.UserContext(), &channel.Comment{
		VideoID: videoID,
		OwnerID: user.ID,
		Content: req.Content,
	})
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, comment, "comment added")
}

func (s *Server) updateComment(c *fiber.Ctx) error {
	comment, err := s.ownedComment(c)
	if err != nil {
		return err
	}

	req := commentRequest{}
	if err := c.BodyParser(&req); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := req.Validate(); err != nil {
		return err
	}

	comment.Content = req.Content

	updated, err := s.content.Comments().Save(c.UserContext(), comment)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, updated, "comment updated")
}

func (s *Server) deleteComment(c *fiber.Ctx) error {
	comment, err := s.ownedComment(c)
	if err != nil {
		return err
	}

	if err := s.content.Comments().Remove(c.UserContext(), comment.ID); err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{}, "comment deleted")
}

func (s *Server) ownedComment(c *fiber.Ctx) (*channel.Comment, error) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return nil, auth.ErrUnauthorized
	}

	id, err := paramUUID(c, "commentId")
	if err != nil {
		return nil, err
	}

	comment, err := s.content.Comments().GetByID(c.UserContext(), id)
	if err != nil {
		return nil, err
	}

	if comment.OwnerID != user.ID {
		return nil, ErrNotOwner
	}

	return comment, nil
}
