package server

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/streamhub/streamhub/auth"
	"github.com/streamhub/streamhub/channel"
)

type tweetRequest struct {
	Content string `json:"content"`
}

func (r tweetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.Length(1, 500)),
	)
}

func (s *Server) createTweet(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.ErrUnauthorized
	}

	req := tweetRequest{}
	if err := c.BodyParser(&req); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := req.Validate(); err != nil {
		return err
	}

	tweet, err := s.content.Tweets().Post(c.UserContext(), &channel.Tweet{
		OwnerID: user.ID,
		Content: req.Content,
	})
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, tweet, "tweet created")
}

func (s *Server) listUserTweets(c *fiber.Ctx) error {
	ownerID, err := paramUUID(c, "userId")
	if err != nil {
		return err
	}

	opts := channel.ListTweetsOptions{
		Page:    c.QueryInt("page", 1),
		Limit:   c.QueryInt("limit", 10),
		OwnerID: ownerID,
	}

	tweets, total, err := s.content.Tweets().List(c.UserContext(), opts)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, channel.Page[*channel.Tweet]{
		Items: tweets,
		Total: total,
		Page:  opts.Page,
		Limit: opts.Limit,
	}, "tweets fetched")
}

func (s *Server) updateTweet(c *fiber.Ctx) error {
	tweet, err := s.ownedTweet(c)
	if err != nil {
		return err
	}

	req := tweetRequest{}
	if err := c.BodyParser(&req); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := req.Validate(); err != nil {
		return err
	}

	tweet.Content = req.Content

	updated, err := s.content.Tweets().Save(c.UserContext(), tweet)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, updated, "tweet updated")
}

func (s *Server) deleteTweet(c *fiber.Ctx) error {
	tweet, err := s.ownedTweet(c)
	if err != nil {
		return err
	}

	if err := s.content.Tweets().Remove(c.UserContext(), tweet.ID); err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{}, "tweet deleted")
}

func (s *Server) ownedTweet(c *fiber.Ctx) (*channel.Tweet, error) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return nil, auth.ErrUnauthorized
	}

	id, err := paramUUID(c, "tweetId")
	if err != nil {
		return nil, err
	}

	tweet, err := s.content.Tweets().GetByID(c.UserContext(), id)
	if err != nil {
		return nil, err
	}

	if tweet.OwnerID != user.ID {
		return nil, ErrNotOwner
	}

	return tweet, nil
}
