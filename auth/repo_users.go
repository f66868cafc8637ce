package auth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the credential store contract: record lookup by identifier or
// unique identity fields plus single-column atomic mutations for the
// refresh token, password, and watch history.
type Users interface {
	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByLogin(ctx context.Context, username, email string) (*User, error)

	StoreRefreshToken(ctx context.Context, id uuid.UUID, token string) error
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error

	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SaveWatchHistory(ctx context.Context, id uuid.UUID, history []string) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository builds the Users store over a bun DB.
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)
	return a.Repository.CreateTx(ctx, tx, user)
}

func (a *users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	return record, nil
}

// GetByLogin resolves a user by username or email, trying whichever fields
// are non-blank. Username lookups are case-normalized.
func (a *users) GetByLogin(ctx context.Context, username, email string) (*User, error) {
	options := make([]identifierOption, 0, 2)

	if u := NormalizeUsername(username); u != "" {
		options = append(options, identifierOption{column: "username", value: u})
	}
	if e := strings.TrimSpace(email); e != "" {
		options = append(options, identifierOption{column: "email", value: e})
	}

	for _, opt := range options {
		record := &User{}
		err := a.db.NewSelect().Model(record).
			Where(fmt.Sprintf("?TableAlias.%s = ?", opt.column), opt.value).
			Limit(1).
			Scan(ctx)

		if err != nil {
			if repository.IsRecordNotFound(err) {
				continue
			}
			return nil, err
		}

		return record, nil
	}

	return nil, ErrIdentityNotFound
}

// StoreRefreshToken overwrites the single active refresh token. The prior
// value is implicitly invalidated; this is the rotation write.
func (a *users) StoreRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	return a.setColumn(ctx, id, "refresh_token", token)
}

// ClearRefreshToken removes the stored refresh token. Safe to call when
// none is set, which keeps logout idempotent.
func (a *users) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"refresh_token" = NULL,
			"updated_at" = ?
		WHERE ("usr".id = ?);
	`, time.Now(), id).Exec(ctx)

	return err
}

// UpdatePassword persists a new password hash without touching the rest of
// the record.
func (a *users) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.setColumn(ctx, id, "password_hash", passwordHash)
}

func (a *users) SaveWatchHistory(ctx context.Context, id uuid.UUID, history []string) error {
	now := time.Now()
	record := &User{ID: id, WatchHistory: history, UpdatedAt: &now}
	_, err := a.db.NewUpdate().Model(record).
		Column("watch_history", "updated_at").
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	return err
}

// setColumn does a single-column update; the store's per-row atomicity is
// what keeps concurrent writers from corrupting the record.
func (a *users) setColumn(ctx context.Context, id uuid.UUID, column, value string) error {
	// NOTE: Updating through the ORM model would also rewrite zero-valued
	// columns; raw single-column SQL keeps this a password/token-only write.
	_, err := a.db.NewRaw(fmt.Sprintf(`
		UPDATE "users" AS "usr"
		SET
			%q = ?,
			"updated_at" = ?
		WHERE ("usr".id = ?);
	`, column), value, time.Now(), id).Exec(ctx)

	return err
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.Username = NormalizeUsername(record.Username)
	record.Email = strings.TrimSpace(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

type identifierOption struct {
	column string
	value  string
}

func isEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
