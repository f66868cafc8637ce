package server_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/streamhub/streamhub/auth"
	"github.com/streamhub/streamhub/channel"
	"github.com/streamhub/streamhub/config"
	"github.com/streamhub/streamhub/server"
)

// fakeStorage stands in for the object store; uploads resolve to
// deterministic URLs without any network traffic.
type fakeStorage struct {
	uploads int
}

func (f *fakeStorage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	f.uploads++
	return "https://cdn.test/" + key, nil
}

func (f *fakeStorage) PresignGet(ctx context.Context, key string) (string, error) {
	return "https://cdn.test/" + key + "?signed", nil
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

var dbSeq int

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	app, _ := newTestAppWithStorage(t)
	return app
}

func newTestAppWithStorage(t *testing.T) (*fiber.App, *fakeStorage) {
	t.Helper()

	dbSeq++
	dsn := fmt.Sprintf("file:servertest%d?mode=memory&cache=shared", dbSeq)

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	assert.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	for _, model := range []any{
		(*auth.User)(nil),
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

	cfg := &config.Config{
		ListenAddr: ":0",
		Tokens: config.TokenConfig{
			AccessSecret:  "test-access-secret-0123456789",
			RefreshSecret: "test-refresh-secret-9876543210",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    240 * time.Hour,
			Issuer:        "streamhub-test",
		},
		CORS: config.CORSConfig{AllowedOrigin: "http://localhost:3000"},
	}

	users := auth.NewRepositoryManager(db)
	content := channel.NewRepositoryManager(db)
	tokens := auth.NewTokenService(cfg, nil)
	session := auth.NewSessionManager(users, tokens)

	storage := &fakeStorage{}

	srv := server.New(server.Options{
		Config:  cfg,
		Session: session,
		Tokens:  tokens,
		Users:   users,
		Content: content,
		Storage: storage,
	})

	return srv.App(), storage
}

func registerRequest(t *testing.T, username, email string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	assert.NoError(t, w.WriteField("fullName", "Test Person"))
	assert.NoError(t, w.WriteField("email", email))
	assert.NoError(t, w.WriteField("username", username))
	assert.NoError(t, w.WriteField("password", "sup3rs3cret!"))

	avatar, err := w.CreateFormFile("avatar", "avatar.png")
	assert.NoError(t, err)
	_, err = avatar.Write([]byte("not-really-a-png"))
	assert.NoError(t, err)

	assert.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())

	return req
}

func registerUser(t *testing.T, app *fiber.App, username, email string) {
	t.Helper()

	resp, err := app.Test(registerRequest(t, username, email), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

type loginSession struct {
	AccessToken  string
	RefreshToken string
	Cookies      []*http.Cookie
	UserID       string
}

func login(t *testing.T, app *fiber.App, username string) loginSession {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{
		"username": username,
		"password": "sup3rs3cret!",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env := decode(t, resp)

	data := struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}{}
	assert.NoError(t, json.Unmarshal(env.Data, &data))

	return loginSession{
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		Cookies:      resp.Cookies(),
		UserID:       data.User.ID,
	}
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)

	env := envelope{}
	assert.NoError(t, json.Unmarshal(body, &env))

	return env
}

func authorized(req *http.Request, session loginSession) *http.Request {
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+session.AccessToken)
	return req
}

func jsonRequest(method, target string, payload any) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func TestAuthFlow(t *testing.T) {
	app, storage := newTestAppWithStorage(t)

	registerUser(t, app, "creator", "creator@example.com")

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		uploadsBefore := storage.uploads

		resp, err := app.Test(registerRequest(t, "CREATOR", "creator@example.com"), -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)

		// the rejection happens before any file is uploaded
		assert.Equal(t, uploadsBefore, storage.uploads)
	})

	t.Run("registration without avatar is rejected", func(t *testing.T) {
		body := &bytes.Buffer{}
		w := multipart.NewWriter(body)
		assert.NoError(t, w.WriteField("fullName", "No Avatar"))
		assert.NoError(t, w.WriteField("email", "noavatar@example.com"))
		assert.NoError(t, w.WriteField("username", "noavatar"))
		assert.NoError(t, w.WriteField("password", "sup3rs3cret!"))
		assert.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
		req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())

		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("login by email works too", func(t *testing.T) {
		payload, _ := json.Marshal(map[string]string{
			"email":    "creator@example.com",
			"password": "sup3rs3cret!",
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(payload))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("login sets auth cookies", func(t *testing.T) {
		session := login(t, app, "creator")

		names := map[string]bool{}
		for _, cookie := range session.Cookies {
			names[cookie.Name] = cookie.HttpOnly
		}

		assert.True(t, names[auth.AccessCookieName])
		assert.True(t, names[auth.RefreshCookieName])
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		payload, _ := json.Marshal(map[string]string{
			"username": "creator",
			"password": "wrong-password",
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(payload))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("current user requires a token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil), -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("current user with bearer token", func(t *testing.T) {
		session := login(t, app, "creator")

		req := authorized(httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil), session)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		env := decode(t, resp)
		assert.True(t, env.Success)
		assert.Contains(t, string(env.Data), "creator")
		assert.NotContains(t, string(env.Data), "password")
	})

	t.Run("refresh rotates and revokes the old token", func(t *testing.T) {
		session := login(t, app, "creator")

		req := jsonRequest(http.MethodPost, "/api/v1/users/refresh-token", map[string]string{
			"refreshToken": session.RefreshToken,
		})
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		// the first rotation consumed the token; replaying it must fail
		replay := jsonRequest(http.MethodPost, "/api/v1/users/refresh-token", map[string]string{
			"refreshToken": session.RefreshToken,
		})
		resp, err = app.Test(replay, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("logout clears the stored refresh token", func(t *testing.T) {
		session := login(t, app, "creator")

		req := authorized(httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil), session)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		// refresh after logout fails the revocation check
		refresh := jsonRequest(http.MethodPost, "/api/v1/users/refresh-token", map[string]string{
			"refreshToken": session.RefreshToken,
		})
		resp, err = app.Test(refresh, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		// the access token stays valid until it expires on its own
		me := authorized(httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil), session)
		resp, err = app.Test(me, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("change password invalidates the old one", func(t *testing.T) {
		app := newTestApp(t)
		registerUser(t, app, "rotator", "rotator@example.com")
		session := login(t, app, "rotator")

		req := authorized(jsonRequest(http.MethodPost, "/api/v1/users/change-password", map[string]string{
			"oldPassword": "sup3rs3cret!",
			"newPassword": "ev3nm0res3cret!",
		}), session)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		payload, _ := json.Marshal(map[string]string{
			"username": "rotator",
			"password": "sup3rs3cret!",
		})
		loginReq := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(payload))
		loginReq.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err = app.Test(loginReq, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestErrorEnvelope(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil), -1)
	assert.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)

	payload := server.ErrorResponse{}
	assert.NoError(t, json.Unmarshal(body, &payload))
	assert.False(t, payload.Success)
	assert.Equal(t, http.StatusUnauthorized, payload.StatusCode)
	assert.NotEmpty(t, payload.Message)
}

func TestHealthcheck(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env := decode(t, resp)
	assert.True(t, env.Success)
	assert.True(t, strings.Contains(string(env.Data), "ok"))
}
