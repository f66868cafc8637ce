package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RegisterInput carries the already-uploaded media references plus the
// identity fields for a new account.
type RegisterInput struct {
	Username  string
	Email     string
	FullName  string
	Password  string
	AvatarURL string
	CoverURL  string
}

// LoginResult is what a successful login hands back to the boundary layer.
type LoginResult struct {
	User   *PublicUser
	Tokens TokenPair
}

// SessionManager orchestrates registration, login, logout, token rotation,
// and password changes over the credential store and token service.
type SessionManager struct {
	repo   RepositoryManager
	tokens TokenService
	hasher PasswordAuthenticator
	logger Logger
}

// NewSessionManager wires a SessionManager with default bcrypt hashing.
func NewSessionManager(repo RepositoryManager, tokens TokenService) *SessionManager {
	return &SessionManager{
		repo:   repo,
		tokens: tokens,
		hasher: BcryptHasher{},
		logger: defLogger{},
	}
}

func (s *SessionManager) WithLogger(logger Logger) *SessionManager {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *SessionManager) WithHasher(hasher PasswordAuthenticator) *SessionManager {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

// Register creates a new user. All identity fields must be non-blank after
// trimming, the avatar reference must resolve, and username/email must be
// unique. Returns the public view of the created record.
func (s *SessionManager) Register(ctx context.Context, input RegisterInput) (*PublicUser, error) {
	for _, field := range []string{input.Username, input.Email, input.FullName, input.Password} {
		if strings.TrimSpace(field) == "" {
			return nil, errors.New("all fields are required", errors.CategoryValidation).
				WithCode(errors.CodeBadRequest)
		}
	}

	if !isEmail(strings.TrimSpace(input.Email)) {
		return nil, errors.New("a valid email is required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	if strings.TrimSpace(input.AvatarURL) == "" {
		return nil, errors.New("avatar image is required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	if existing, err := s.repo.Users().GetByLogin(ctx, input.Username, input.Email); err == nil && existing != nil {
		return nil, ErrDuplicateIdentity
	} else if err != nil && !errors.Is(err, ErrIdentityNotFound) {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check existing users")
	}

	user := &User{}

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := s.hasher.HashPassword(input.Password)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
		}

		user.Username = NormalizeUsername(input.Username)
		user.Email = strings.TrimSpace(input.Email)
		user.FullName = strings.TrimSpace(input.FullName)
		user.PasswordHash = hash
		user.AvatarURL = input.AvatarURL
		user.CoverURL = input.CoverURL

		if id, err := hashid.NewUUID(user.Email); err == nil {
			user.ID = id
		}

		if user, err = s.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return errors.Wrap(err, errors.CategoryConflict, "could not create user").
				WithCode(errors.CodeConflict)
		}

		return nil
	})

	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "user registration failed")
	}

	return user.Public(), nil
}

// Login verifies credentials, issues a fresh token pair, and persists the
// refresh token on the user record. Storing the new refresh token
// overwrites any prior value, so at most one session per user can refresh.
func (s *SessionManager) Login(ctx context.Context, username, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(username) == "" && strings.TrimSpace(email) == "" {
		return nil, errors.New("email or username is required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	user, err := s.repo.Users().GetByLogin(ctx, username, email)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			s.logger.Info("login attempt for unknown identifier")
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during login")
	}

	if err := s.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Info("login password mismatch for user %s", user.ID)
		return nil, ErrMismatchedHashAndPassword
	}

	pair, err := s.issueAndStorePair(ctx, user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: user.Public(), Tokens: pair}, nil
}

// RefreshAccessToken rotates the token pair. The presented token must
// verify AND exactly match the stored instance; anything superseded or
// cleared fails the revocation check.
func (s *SessionManager) RefreshAccessToken(ctx context.Context, presented string) (TokenPair, error) {
	if strings.TrimSpace(presented) == "" {
		return TokenPair{}, ErrUnauthorized
	}

	claims, err := s.tokens.ValidateRefresh(presented)
	if err != nil {
		s.logger.Info("refresh token failed validation: %v", err)
		return TokenPair{}, ErrTokenMalformed
	}

	id, err := claims.UserUUID()
	if err != nil {
		return TokenPair{}, ErrTokenMalformed
	}

	user, err := s.repo.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return TokenPair{}, ErrTokenMalformed
		}
		return TokenPair{}, errors.Wrap(err, errors.CategoryInternal, "failed to resolve refresh subject")
	}

	if user.RefreshToken == "" || user.RefreshToken != presented {
		s.logger.Warn("refresh token reuse or superseded token for user %s", user.ID)
		return TokenPair{}, ErrTokenRevoked
	}

	return s.issueAndStorePair(ctx, user)
}

// Logout clears the stored refresh token. Unconditional and idempotent;
// outstanding access tokens stay valid until they expire on their own.
func (s *SessionManager) Logout(ctx context.Context, identity Identity) error {
	id, err := identityUUID(identity)
	if err != nil {
		return err
	}

	if err := s.repo.Users().ClearRefreshToken(ctx, id); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to clear refresh token")
	}

	return nil
}

// ChangePassword re-hashes and stores a new password after verifying the
// old one. Password-only mutation, nothing else on the record changes.
func (s *SessionManager) ChangePassword(ctx context.Context, identity Identity, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return errors.New("new password is required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	id, err := identityUUID(identity)
	if err != nil {
		return err
	}

	user, err := s.repo.Users().GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.hasher.ComparePasswordAndHash(oldPassword, user.PasswordHash); err != nil {
		return ErrMismatchedHashAndPassword
	}

	hash, err := s.hasher.HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	if err := s.repo.Users().UpdatePassword(ctx, id, hash); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist password")
	}

	return nil
}

// RecordWatchEvent pushes a video onto the user's watch history, most
// recent first, deduplicated, capped at MaxWatchHistory entries.
func (s *SessionManager) RecordWatchEvent(ctx context.Context, identity Identity, videoID string) ([]string, error) {
	if strings.TrimSpace(videoID) == "" {
		return nil, errors.New("video id is required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	id, err := identityUUID(identity)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Users().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.TouchWatchHistory(videoID)

	if err := s.repo.Users().SaveWatchHistory(ctx, id, user.WatchHistory); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist watch history")
	}

	return user.WatchHistory, nil
}

func (s *SessionManager) issueAndStorePair(ctx context.Context, user *User) (TokenPair, error) {
	pair, err := s.tokens.IssuePair(user.AsIdentity())
	if err != nil {
		s.logger.Error("token issuance failed for user %s: %v", user.ID, err)
		return TokenPair{}, errors.Wrap(err, errors.CategoryInternal, "something went wrong while generating tokens")
	}

	if err := s.repo.Users().StoreRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return TokenPair{}, errors.Wrap(err, errors.CategoryInternal, "failed to persist refresh token")
	}

	return pair, nil
}

func identityUUID(identity Identity) (uuid.UUID, error) {
	if identity == nil {
		return uuid.Nil, ErrUnauthorized
	}

	id, err := uuid.Parse(identity.ID())
	if err != nil {
		return uuid.Nil, ErrTokenMalformed
	}

	return id, nil
}
