package channel

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrCommentNotFound is returned for lookups that match nothing.
var ErrCommentNotFound = errors.New("comment not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("COMMENT_NOT_FOUND")

// Comments is the per-video comment store.
type Comments interface {
	Add(ctx context.Context, comment *Comment) (*Comment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	ListByVideo(ctx context.Context, videoID uuid.UUID, page, limit int) ([]*Comment, int, error)
	Save(ctx context.Context, comment *Comment) (*Comment, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type comments struct {
	db *bun.DB
}

var _ Comments = (*comments)(nil)

func NewCommentsRepository(db *bun.DB) Comments {
	return &comments{db: db}
}

func (r *comments) Add(ctx context.Context, comment *Comment) (*Comment, error) {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}

	if _, err := r.db.NewInsert().Model(comment).Exec(ctx); err != nil {
		return nil, err
	}

	return comment, nil
}

func (r *comments) GetByID(ctx context.Context, id uuid.UUID) (*Comment, error) {
	record := &Comment{}
	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	return record, nil
}

func (r *comments) ListByVideo(ctx context.Context, videoID uuid.UUID, page, limit int) ([]*Comment, int, error) {
	page, limit = normalizePage(page, limit)

	records := []*Comment{}
	total, err := r.db.NewSelect().Model(&records).
		Where("?TableAlias.video_id = ?", videoID).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		ScanAndCount(ctx)

	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *comments) Save(ctx context.Context, comment *Comment) (*Comment, error) {
	now := time.Now()
	comment.UpdatedAt = &now

	if _, err := r.db.NewUpdate().Model(comment).WherePK().Exec(ctx); err != nil {
		return nil, err
	}

	return comment, nil
}

func (r *comments) Remove(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().Model((*Comment)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	return err
}
