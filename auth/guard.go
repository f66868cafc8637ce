package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

const (
	// AccessCookieName is the cookie carrying the access token.
	AccessCookieName = "AccessToken"
	// RefreshCookieName is the cookie carrying the refresh token.
	RefreshCookieName = "RefreshToken"
	// ContextUserKey is the locals key the guard stores the resolved user under.
	ContextUserKey = "auth_user"
	// ContextClaimsKey is the locals key the guard stores the raw claims under.
	ContextClaimsKey = "auth_claims"

	authScheme = "Bearer"
)

// GuardConfig configures the request gate.
type GuardConfig struct {
	Tokens TokenService
	Users  Users
	Logger Logger
	// ErrorHandler receives every rejection; defaults to returning the error
	// so the app-level error handler renders the envelope.
	ErrorHandler fiber.ErrorHandler
}

// NewGuard returns middleware that runs before protected operations. It
// extracts the access token (cookie first, then Authorization header),
// verifies it, resolves the subject, and attaches the identity to the
// request; any failure short-circuits with an auth error.
func NewGuard(cfg GuardConfig) fiber.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = defLogger{}
	}

	errorHandler := cfg.ErrorHandler
	if errorHandler == nil {
		errorHandler = func(c *fiber.Ctx, err error) error {
			return err
		}
	}

	return func(c *fiber.Ctx) error {
		raw := ExtractToken(c)
		if raw == "" {
			return errorHandler(c, ErrUnauthorized)
		}

		claims, err := cfg.Tokens.ValidateAccess(raw)
		if err != nil {
			logger.Info("guard rejected token: %v", err)
			if IsTokenExpiredError(err) {
				return errorHandler(c, ErrTokenExpired)
			}
			return errorHandler(c, ErrTokenMalformed)
		}

		id, err := claims.UserUUID()
		if err != nil {
			return errorHandler(c, ErrTokenMalformed)
		}

		user, err := cfg.Users.GetByID(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, ErrIdentityNotFound) {
				return errorHandler(c, ErrTokenMalformed)
			}
			return errorHandler(c, errors.Wrap(err, errors.CategoryInternal, "guard failed to resolve user"))
		}

		// Downstream handlers only ever see the record through helpers that
		// strip secret fields; clear them here so nothing leaks by accident.
		user.PasswordHash = ""
		user.RefreshToken = ""

		c.Locals(ContextUserKey, user)
		c.Locals(ContextClaimsKey, claims)

		return c.Next()
	}
}

// ExtractToken pulls the access token from the request: the cookie takes
// precedence over an Authorization: Bearer header.
func ExtractToken(c *fiber.Ctx) string {
	if cookie := c.Cookies(AccessCookieName); cookie != "" {
		return cookie
	}

	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], authScheme) {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// CurrentUser returns the user resolved by the guard for this request.
func CurrentUser(c *fiber.Ctx) (*User, bool) {
	user, ok := c.Locals(ContextUserKey).(*User)
	return user, ok && user != nil
}

// CurrentClaims returns the validated claims for this request.
func CurrentClaims(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(ContextClaimsKey).(*Claims)
	return claims, ok && claims != nil
}
