package server

import (
	"mime/multipart"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/streamhub/streamhub/auth"
	"github.com/streamhub/streamhub/media"
)

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required),
	)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (r changePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OldPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 100)),
	)
}

type registerForm struct {
	FullName string
	Email    string
	Username string
	Password string
}

func (r registerForm) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (s *Server) registerUser(c *fiber.Ctx) error {
	form := registerForm{
		FullName: c.FormValue("fullName"),
		Email:    c.FormValue("email"),
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
	}

	if err := form.Validate(); err != nil {
		return err
	}

	avatar, err := c.FormFile("avatar")
	if err != nil {
		return errors.New("avatar file is required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithTextCode("AVATAR_REQUIRED")
	}

	// Check for a taken username or email before uploading anything, so a
	// rejected registration leaves no orphaned objects in storage.
	if _, err := s.users.Users().GetByLogin(c.UserContext(), form.Username, form.Email); err == nil {
		return auth.ErrDuplicateIdentity
	} else if !errors.Is(err, auth.ErrIdentityNotFound) {
		return err
	}

	avatarURL, err := s.uploadFormFile(c, avatar, "avatars")
	if err != nil {
		return err
	}

	coverURL := ""
	if cover, err := c.FormFile("coverImage"); err == nil && cover != nil {
		if coverURL, err = s.uploadFormFile(c, cover, "covers"); err != nil {
			return err
		}
	}

	user, err := s.session.Register(c.UserContext(), auth.RegisterInput{
		Username:  form.Username,
		Email:     form.Email,
		FullName:  form.FullName,
		Password:  form.Password,
		AvatarURL: avatarURL,
		CoverURL:  coverURL,
	})
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, user, "user registered successfully")
}

func (s *Server) loginUser(c *fiber.Ctx) error {
	req := loginRequest{}
	if err := c.BodyParser(&req); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := req.Validate(); err != nil {
		return err
	}

	result, err := s.session.Login(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	s.setAuthCookies(c, result.Tokens)

	return respond(c, fiber.StatusOK, fiber.Map{
		"user":         result.User,
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
	}, "user logged in successfully")
}

func (s *Server) refreshAccessToken(c *fiber.Ctx) error {
	presented := c.Cookies(auth.RefreshCookieName)
	if presented == "" {
		req := refreshRequest{}
		if err := c.BodyParser(&req); err == nil {
			presented = req.RefreshToken
		}
	}

	pair, err := s.session.RefreshAccessToken(c.UserContext(), presented)
	if err != nil {
		return err
	}

	s.setAuthCookies(c, pair)

	return respond(c, fiber.StatusOK, fiber.Map{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "access token refreshed")
}

func (s *Server) logoutUser(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.ErrUnauthorized
	}

	if err := s.session.Logout(c.UserContext(), user.AsIdentity()); err != nil {
		return err
	}

	s.clearAuthCookies(c)

	return respond(c, fiber.StatusOK, fiber.Map{}, "user logged out")
}

func (s *Server) changePassword(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.ErrUnauthorized
	}

	req := changePasswordRequest{}
	if err := c.BodyParser(&req); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := req.Validate(); err != nil {
		return err
	}

	if err := s.session.ChangePassword(c.UserContext(), user.AsIdentity(), req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{}, "password changed successfully")
}

func (s *Server) currentUser(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.ErrUnauthorized
	}

	return respond(c, fiber.StatusOK, user.Public(), "current user fetched")
}

func (s *Server) watchHistory(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.ErrUnauthorized
	}

	history := user.WatchHistory
	if history == nil {
		history = []string{}
	}

	return respond(c, fiber.StatusOK, history, "watch history fetched")
}

func (s *Server) uploadFormFile(c *fiber.Ctx, fh *multipart.FileHeader, prefix string) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryBadInput, "could not read uploaded file").
			WithCode(errors.CodeBadRequest)
	}
	defer file.Close()

	url, err := s.storage.Upload(c.UserContext(), media.ObjectKey(prefix, fh.Filename), fh.Header.Get("Content-Type"), file, fh.Size)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryOperation, "file upload failed")
	}

	return url, nil
}

func (s *Server) setAuthCookies(c *fiber.Ctx, pair auth.TokenPair) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.AccessCookieName,
		Value:    pair.AccessToken,
		Expires:  time.Now().Add(s.cfg.Tokens.AccessTTL),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
	c.Cookie(&fiber.Cookie{
		Name:     auth.RefreshCookieName,
		Value:    pair.RefreshToken,
		Expires:  time.Now().Add(s.cfg.Tokens.RefreshTTL),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (s *Server) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{auth.AccessCookieName, auth.RefreshCookieName} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			Secure:   true,
			SameSite: "Lax",
		})
	}
}
