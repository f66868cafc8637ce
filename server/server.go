package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/streamhub/streamhub/auth"
	"github.com/streamhub/streamhub/channel"
	"github.com/streamhub/streamhub/config"
	"github.com/streamhub/streamhub/media"
)

// Options carries everything the HTTP layer depends on; nothing is
// resolved from globals.
type Options struct {
	Config  *config.Config
	Logger  auth.Logger
	Session *auth.SessionManager
	Tokens  auth.TokenService
	Users   auth.RepositoryManager
	Content channel.RepositoryManager
	Storage media.Storage
}

// Server owns the fiber app and the wired handlers.
type Server struct {
	app     *fiber.App
	cfg     *config.Config
	log     auth.Logger
	session *auth.SessionManager
	tokens  auth.TokenService
	users   auth.RepositoryManager
	content channel.RepositoryManager
	dash    *channel.Dashboard
	storage media.Storage
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = auth.DefaultLogger()
	}

	s := &Server{
		cfg:     opts.Config,
		log:     logger,
		session: opts.Session,
		tokens:  opts.Tokens,
		users:   opts.Users,
		content: opts.Content,
		dash:    channel.NewDashboard(opts.Content),
		storage: opts.Storage,
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "streamhub",
		ErrorHandler: ErrorHandler(logger),
	})

	s.app.Use(recover.New())

	corsCfg := cors.Config{AllowOrigins: opts.Config.CORS.AllowedOrigin}
	// cookies need credentialed CORS, but fiber refuses credentials
	// together with a wildcard origin
	if corsCfg.AllowOrigins != "*" {
		corsCfg.AllowCredentials = true
	}
	s.app.Use(cors.New(corsCfg))

	s.routes()

	return s
}

// App exposes the fiber app, mostly so tests can drive it with app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.ListenAddr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) guard() fiber.Handler {
	return auth.NewGuard(auth.GuardConfig{
		Tokens: s.tokens,
		Users:  s.users.Users(),
		Logger: s.log,
	})
}

func (s *Server) routes() {
	api := s.app.Group("/api/v1")
	protected := s.guard()

	users := api.Group("/users")
	users.Post("/register", s.registerUser)
	users.Post("/login", s.loginUser)
	users.Post("/refresh-token", s.refreshAccessToken)
	users.Post("/logout", protected, s.logoutUser)
	users.Post("/change-password", protected, s.changePassword)
	users.Get("/current-user", protected, s.currentUser)
	users.Get("/history", protected, s.watchHistory)

	videos := api.Group("/videos", protected)
	videos.Get("/", s.listVideos)
	videos.Post("/", s.publishVideo)
	videos.Get("/:videoId", s.getVideo)
	videos.Patch("/:videoId", s.updateVideo)
	videos.Delete("/:videoId", s.deleteVideo)
	videos.Patch("/toggle/publish/:videoId", s.togglePublish)

	tweets := api.Group("/tweets", protected)
	tweets.Post("/", s.createTweet)
	tweets.Get("/user/:userId", s.listUserTweets)
	tweets.Patch("/:tweetId", s.updateTweet)
	tweets.Delete("/:tweetId", s.deleteTweet)

	comments := api.Group("/comments", protected)
	comments.Get("/:videoId", s.listComments)
	comments.Post("/:videoId", s.addComment)
	comments.Patch("/c/:commentId", s.updateComment)
	comments.Delete("/c/:commentId", s.deleteComment)

	likes := api.Group("/likes", protected)
	likes.Post("/toggle/v/:videoId", s.toggleVideoLike)
	likes.Post("/toggle/c/:commentId", s.toggleCommentLike)
	likes.Post("/toggle/t/:tweetId", s.toggleTweetLike)
	likes.Get("/videos", s.likedVideos)

	playlists := api.Group("/playlist", protected)
	playlists.Post("/", s.createPlaylist)
	playlists.Get("/:playlistId", s.getPlaylist)
	playlists.Patch("/:playlistId", s.updatePlaylist)
	playlists.Delete("/:playlistId", s.deletePlaylist)
	playlists.Patch("/add/:videoId/:playlistId", s.addVideoToPlaylist)
	playlists.Patch("/remove/:videoId/:playlistId", s.removeVideoFromPlaylist)
	playlists.Get("/user/:userId", s.listUserPlaylists)

	subs := api.Group("/subscriptions", protected)
	subs.Post("/c/:channelId", s.toggleSubscription)
	subs.Get("/c/:channelId", s.channelSubscribers)
	subs.Get("/u/:subscriberId", s.subscribedChannels)

	dashboard := api.Group("/dashboard", protected)
	dashboard.Get("/stats", s.channelStats)
	dashboard.Get("/videos", s.channelVideos)

	s.app.Get("/healthz", s.healthcheck)
}

func (s *Server) healthcheck(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, fiber.Map{"status": "ok"}, "service is healthy")
}
