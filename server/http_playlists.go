package server

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/streamhub/streamhub/auth"
	"github.com/streamhub/streamhub/channel"
)

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r playlistRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
	)
}

func (s *Server) createPlaylist(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.ErrUnauthorized
	}

	req := playlistRequest{}
	if err := c.BodyParser(&req); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := req.Validate(); err != nil {
		return err
	}

	playlist, err := s.content.Playlists().Add(c.UserContext(), &channel.Playlist{
		OwnerID:     user.ID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, playlist, "playlist created")
}

func (s *Server) getPlaylist(c *fiber.Ctx) error {
	id, err := paramUUID(c, "playlistId")
	if err != nil {
		return err
	}

	playlist, err := s.content.Playlists().GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, playlist, "playlist fetched")
}

func (s *Server) updatePlaylist(c *fiber.Ctx) error {
	playlist, err := s.ownedPlaylist(c)
	if err != nil {
		return err
	}

	req := playlistRequest{}
	if err := c.BodyParser(&req); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := req.Validate(); err != nil {
		return err
	}

	playlist.Name = req.Name
	playlist.Description = req.Description

	updated, err := s.content.Playlists().Save(c.UserContext(), playlist)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, updated, "playlist updated")
}

func (s *Server) deletePlaylist(c *fiber.Ctx) error {
	playlist, err := s.ownedPlaylist(c)
	if err != nil {
		return err
	}

	if err := s.content.Playlists().Remove(c.UserContext(), playlist.ID); err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{}, "playlist deleted")
}

func (s *Server) addVideoToPlaylist(c *fiber.Ctx) error {
	playlist, err := s.ownedPlaylist(c)
	if err != nil {
		return err
	}

	videoID, err := paramUUID(c, "videoId")
	if err != nil {
		return err
	}

	if _, err := s.content.Videos().GetByID(c.UserContext(), videoID); err != nil {
		return err
	}

	if !playlist.AddVideo(videoID.String()) {
		return respond(c, fiber.StatusOK, playlist, "video already in playlist")
	}

	updated, err := s.content.Playlists().Save(c.UserContext(), playlist)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, updated, "video added to playlist")
}

func (s *Server) removeVideoFromPlaylist(c *fiber.Ctx) error {
	playlist, err := s.ownedPlaylist(c)
	if err != nil {
		return err
	}

	videoID, err := paramUUID(c, "videoId")
	if err != nil {
		return err
	}

	if !playlist.RemoveVideo(videoID.String()) {
		return respond(c, fiber.StatusOK, playlist, "video not in playlist")
	}

	updated, err := s.content.Playlists().Save(c.UserContext(), playlist)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, updated, "video removed from playlist")
}

func (s *Server) listUserPlaylists(c *fiber.Ctx) error {
	ownerID, err := paramUUID(c, "userId")
	if err != nil {
		return err
	}

	playlists, err := s.content.Playlists().ListByOwner(c.UserContext(), ownerID)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, playlists, "playlists fetched")
}

func (s *Server) ownedPlaylist(c *fiber.Ctx) (*channel.Playlist, error) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return nil, auth.ErrUnauthorized
	}

	id, err := paramUUID(c, "playlistId")
	if err != nil {
		return nil, err
	}

	playlist, err := s.content.Playlists().GetByID(c.UserContext(), id)
	if err != nil {
		return nil, err
	}

	if playlist.OwnerID != user.ID {
		return nil, ErrNotOwner
	}

	return playlist, nil
}
