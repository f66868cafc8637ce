package channel

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes the content repositories plus transaction
// support.
type RepositoryManager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Videos() Videos
	Tweets() Tweets
	Comments() Comments
	Likes() Likes
	Playlists() Playlists
	Subscriptions() Subscriptions
}

type mngr struct {
	db            *bun.DB
	videos        Videos
	tweets        Tweets
	comments      Comments
	likes         Likes
	playlists     Playlists
	subscriptions Subscriptions
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:            db,
		videos:        NewVideosRepository(db),
		tweets:        NewTweetsRepository(db),
		comments:      NewCommentsRepository(db),
		likes:         NewLikesRepository(db),
		playlists:     NewPlaylistsRepository(db),
		subscriptions: NewSubscriptionsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.videos == nil {
		return errors.New("repository videos should be initialized")
	}

	if m.tweets == nil {
		return errors.New("repository tweets should be initialized")
	}

	if m.comments == nil {
		return errors.New("repository comments should be initialized")
	}

	if m.likes == nil {
		return errors.New("repository likes should be initialized")
	}

	if m.playlists == nil {
		return errors.New("repository playlists should be initialized")
	}

	if m.subscriptions == nil {
		return errors.New("repository subscriptions should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Videos() Videos {
	return m.videos
}

func (m mngr) Tweets() Tweets {
	return m.tweets
}

func (m mngr) Comments() Comments {
	return m.comments
}

func (m mngr) Likes() Likes {
	return m.likes
}

func (m mngr) Playlists() Playlists {
	return m.playlists
}

func (m mngr) Subscriptions() Subscriptions {
	return m.subscriptions
}
