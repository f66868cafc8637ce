package channel

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrTweetNotFound is returned for lookups that match nothing.
var ErrTweetNotFound = errors.New("tweet not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("TWEET_NOT_FOUND")

// ListTweetsOptions filters and pages the tweet feed.
type ListTweetsOptions struct {
	Page    int
	Limit   int
	Query   string
	OwnerID uuid.UUID
}

// Tweets is the micro-post store.
type Tweets interface {
	Post(ctx context.Context, tweet *Tweet) (*Tweet, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Tweet, error)
	List(ctx context.Context, opts ListTweetsOptions) ([]*Tweet, int, error)
	Save(ctx context.Context, tweet *Tweet) (*Tweet, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type tweets struct {
	repository.Repository[*Tweet]
	db *bun.DB
}

var _ Tweets = (*tweets)(nil)

func NewTweetsRepository(db *bun.DB) Tweets {
	repo := repository.NewRepository[*Tweet](db, repository.ModelHandlers[*Tweet]{
		NewRecord: func() *Tweet { return &Tweet{} },
		GetID: func(t *Tweet) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *Tweet, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
	})

	return &tweets{Repository: repo, db: db}
}

func (r *tweets) Post(ctx context.Context, tweet *Tweet) (*Tweet, error) {
	if tweet.ID == uuid.Nil {
		tweet.ID = uuid.New()
	}
	return r.Repository.Create(ctx, tweet)
}

func (r *tweets) GetByID(ctx context.Context, id uuid.UUID) (*Tweet, error) {
	record := &Tweet{}
	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrTweetNotFound
		}
		return nil, err
	}

	return record, nil
}

func (r *tweets) List(ctx context.Context, opts ListTweetsOptions) ([]*Tweet, int, error) {
	page, limit := normalizePage(opts.Page, opts.Limit)

	records := []*Tweet{}
	q := r.db.NewSelect().Model(&records)

	if query := strings.TrimSpace(opts.Query); query != "" {
		q = q.Where("lower(?TableAlias.content) LIKE ?", "%"+strings.ToLower(query)+"%")
	}

	if opts.OwnerID != uuid.Nil {
		q = q.Where("?TableAlias.owner_id = ?", opts.OwnerID)
	}

	q = q.Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit)

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *tweets) Save(ctx context.Context, tweet *Tweet) (*Tweet, error) {
	now := time.Now()
	tweet.UpdatedAt = &now

	_, err := r.db.NewUpdate().Model(tweet).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return tweet, nil
}

func (r *tweets) Remove(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().Model((*Tweet)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	return err
}
