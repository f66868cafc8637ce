package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MaxWatchHistory bounds the per-user watch history list.
const MaxWatchHistory = 100

// User is the credential store record. Username and email are globally
// unique; the refresh token column holds the single active instance.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	FullName      string     `bun:"full_name,notnull" json:"full_name,omitempty"`
	AvatarURL     string     `bun:"avatar_url,notnull" json:"avatar_url,omitempty"`
	CoverURL      string     `bun:"cover_url" json:"cover_url,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"password_hash,omitempty"`
	RefreshToken  string     `bun:"refresh_token,nullzero" json:"refresh_token,omitempty"`
	WatchHistory  []string   `bun:"watch_history,type:jsonb" json:"watch_history,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

var _ Identity = (*userIdentity)(nil)

type userIdentity struct {
	user *User
}

func (i userIdentity) ID() string       { return i.user.ID.String() }
func (i userIdentity) Username() string { return i.user.Username }
func (i userIdentity) Email() string    { return i.user.Email }

// AsIdentity adapts the record to the Identity interface.
func (u *User) AsIdentity() Identity {
	return userIdentity{user: u}
}

// PublicUser is the projection returned to clients. It never carries the
// password hash or the refresh token.
type PublicUser struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	AvatarURL    string     `json:"avatar_url"`
	CoverURL     string     `json:"cover_url,omitempty"`
	WatchHistory []string   `json:"watch_history,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// Public returns the client-safe view of the record.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		AvatarURL:    u.AvatarURL,
		CoverURL:     u.CoverURL,
		WatchHistory: u.WatchHistory,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// NormalizeUsername lowercases and trims a login name before storage or lookup.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// TouchWatchHistory records a view in the watch history: most recent first,
// an existing entry moves to the front instead of duplicating, and the list
// never exceeds MaxWatchHistory.
func (u *User) TouchWatchHistory(videoID string) {
	if videoID == "" {
		return
	}

	history := make([]string, 0, len(u.WatchHistory)+1)
	history = append(history, videoID)
	for _, id := range u.WatchHistory {
		if id == videoID {
			continue
		}
		history = append(history, id)
	}

	if len(history) > MaxWatchHistory {
		history = history[:MaxWatchHistory]
	}

	u.WatchHistory = history
}
