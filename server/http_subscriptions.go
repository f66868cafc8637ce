package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/streamhub/streamhub/auth"
)

func (s *Server) toggleSubscription(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.ErrUnauthorized
	}

	channelID, err := paramUUID(c, "channelId")
	if err != nil {
		return err
	}

	if _, err := s.users.Users().GetByID(c.UserContext(), channelID); err != nil {
		return err
	}

	subscribed, err := s.content.Subscriptions().Toggle(c.UserContext(), user.ID, channelID)
	if err != nil {
		return err
	}

	message := "unsubscribed"
	if subscribed {
		message = "subscribed"
	}

	return respond(c, fiber.StatusOK, fiber.Map{"subscribed": subscribed}, message)
}

func (s *Server) channelSubscribers(c *fiber.Ctx) error {
	channelID, err := paramUUID(c, "channelId")
	if err != nil {
		return err
	}

	ids, err := s.content.Subscriptions().SubscriberIDs(c.UserContext(), channelID)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, ids, "subscribers fetched")
}

func (s *Server) subscribedChannels(c *fiber.Ctx) error {
	subscriberID, err := paramUUID(c, "subscriberId")
	if err != nil {
		return err
	}

	ids, err := s.content.Subscriptions().ChannelIDs(c.UserContext(), subscriberID)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, ids, "subscribed channels fetched")
}
