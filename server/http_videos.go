package server

import (
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/streamhub/streamhub/auth"
	"github.com/streamhub/streamhub/channel"
)

type publishVideoForm struct {
	Title       string
	Description string
	Duration    float64
}

func (r publishVideoForm) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Required),
	)
}

type updateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) listVideos(c *fiber.Ctx) error {
	opts := channel.ListVideosOptions{
		Page:    c.QueryInt("page", 1),
		Limit:   c.QueryInt("limit", 10),
		Query:   c.Query("query"),
		SortBy:  c.Query("sortBy"),
		SortAsc: c.Query("sortType") == "asc",
	}

	if raw := c.Query("userId"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			return errors.New("invalid user id", errors.CategoryBadInput).
				WithCode(errors.CodeBadRequest)
		}
		opts.OwnerID = ownerID
	}

	videos, total, err := s.content.Videos().List(c.UserContext(), opts)
	if err != nil {
		return err
	}

	page, limit := opts.Page, opts.Limit
	if page < 1 {
		page = 1
	}

	return respond(c, fiber.StatusOK, channel.Page[*channel.Video]{
		Items: videos,
		Total: total,
		Page:  page,
		Limit: limit,
	}, "videos fetched")
}

func (s *Server) publishVideo(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.ErrUnauthorized
	}

	duration, _ := strconv.ParseFloat(c.FormValue("duration"), 64)
	form := publishVideoForm{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Duration:    duration,
	}

	if err := form.Validate(); err != nil {
		return err
	}

	videoFile, err := c.FormFile("videoFile")
	if err != nil {
		return errors.New("video file is required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithTextCode("VIDEO_REQUIRED")
	}

	thumbnail, err := c.FormFile("thumbnail")
	if err != nil {
		return errors.New("thumbnail file is required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithTextCode("THUMBNAIL_REQUIRED")
	}

	videoURL, err := s.uploadFormFile(c, videoFile, "videos")
	if err != nil {
		return err
	}

	thumbnailURL, err := s.uploadFormFile(c, thumbnail, "thumbnails")
	if err != nil {
		return err
	}

	video, err := s.content.Videos().Publish(c.UserContext(), &channel.Video{
		OwnerID:      user.ID,
		Title:        form.Title,
		Description:  form.Description,
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
		Duration:     form.Duration,
		IsPublished:  true,
	})
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, video, "video published")
}

// videoDetail decorates the record with the counts shown on the watch
// page.
type videoDetail struct {
	*channel.Video
	LikeCount       int64 `json:"like_count"`
	SubscriberCount int64 `json:"subscriber_count"`
}

// getVideo returns the record after bumping its view counter, and drops
// the video onto the caller's watch history.
func (s *Server) getVideo(c *fiber.Ctx) error {
	id, err := paramUUID(c, "videoId")
	if err != nil {
		return err
	}

	video, err := s.content.Videos().GetAndCountView(c.UserContext(), id)
	if err != nil {
		return err
	}

	likes, err := s.content.Likes().Count(c.UserContext(), video.ID, channel.LikeTargetVideo)
	if err != nil {
		return err
	}

	subscribers, err := s.content.Subscriptions().CountByChannel(c.UserContext(), video.OwnerID)
	if err != nil {
		return err
	}

	if user, ok := auth.CurrentUser(c); ok {
		if _, err := s.session.RecordWatchEvent(c.UserContext(), user.AsIdentity(), video.ID.String()); err != nil {
			s.log.Warn("could not record watch event: %v", err)
		}
	}

	return respond(c, fiber.StatusOK, videoDetail{
		Video:           video,
		LikeCount:       likes,
		SubscriberCount: subscribers,
	}, "video fetched")
}

func (s *Server) updateVideo(c *fiber.Ctx) error {
	video, err := s.ownedVideo(c)
	if err != nil {
		return err
	}

	req := updateVideoRequest{}
	if err := c.BodyParser(&req); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest)
	}

	if req.Title != "" {
		video.Title = req.Title
	}
	if req.Description != "" {
		video.Description = req.Description
	}

	if thumbnail, err := c.FormFile("thumbnail"); err == nil && thumbnail != nil {
		url, err := s.uploadFormFile(c, thumbnail, "thumbnails")
		if err != nil {
			return err
		}
		video.ThumbnailURL = url
	}

	updated, err := s.content.Videos().Save(c.UserContext(), video)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, updated, "video updated")
}

func (s *Server) deleteVideo(c *fiber.Ctx) error {
	video, err := s.ownedVideo(c)
	if err != nil {
		return err
	}

	if err := s.content.Videos().Remove(c.UserContext(), video.ID); err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{}, "video deleted")
}

func (s *Server) togglePublish(c *fiber.Ctx) error {
	video, err := s.ownedVideo(c)
	if err != nil {
		return err
	}

	video.IsPublished = !video.IsPublished

	updated, err := s.content.Videos().Save(c.UserContext(), video)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, updated, "publish state toggled")
}

// ownedVideo resolves the :videoId param and rejects callers that do not
// own the record.
func (s *Server) ownedVideo(c *fiber.Ctx) (*channel.Video, error) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return nil, auth.ErrUnauthorized
	}

	id, err := paramUUID(c, "videoId")
	if err != nil {
		return nil, err
	}

	video, err := s.content.Videos().GetByID(c.UserContext(), id)
	if err != nil {
		return nil, err
	}

	if video.OwnerID != user.ID {
		return nil, ErrNotOwner
	}

	return video, nil
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, errors.New("invalid "+name, errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	return id, nil
}
