package channel

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Likes stores like toggles across videos, comments, and tweets.
type Likes interface {
	// Toggle flips the like state and reports whether the target is now liked.
	Toggle(ctx context.Context, userID, targetID uuid.UUID, kind LikeTarget) (bool, error)
	Count(ctx context.Context, targetID uuid.UUID, kind LikeTarget) (int64, error)
	CountForTargets(ctx context.Context, targetIDs []uuid.UUID, kind LikeTarget) (int64, error)
	LikedVideoIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type likes struct {
	db *bun.DB
}

var _ Likes = (*likes)(nil)

func NewLikesRepository(db *bun.DB) Likes {
	return &likes{db: db}
}

func (r *likes) Toggle(ctx context.Context, userID, targetID uuid.UUID, kind LikeTarget) (bool, error) {
	res, err := r.db.NewDelete().Model((*Like)(nil)).
		Where("user_id = ?", userID).
		Where("target_kind = ?", kind).
		Where("target_id = ?", targetID).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		return false, nil
	}

	like := &Like{
		ID:         uuid.New(),
		UserID:     userID,
		TargetKind: kind,
		TargetID:   targetID,
	}

	if _, err := r.db.NewInsert().Model(like).Exec(ctx); err != nil {
		return false, err
	}

	return true, nil
}

func (r *likes) Count(ctx context.Context, targetID uuid.UUID, kind LikeTarget) (int64, error) {
	count, err := r.db.NewSelect().Model((*Like)(nil)).
		Where("target_kind = ?", kind).
		Where("target_id = ?", targetID).
		Count(ctx)

	return int64(count), err
}

func (r *likes) CountForTargets(ctx context.Context, targetIDs []uuid.UUID, kind LikeTarget) (int64, error) {
	if len(targetIDs) == 0 {
		return 0, nil
	}

	count, err := r.db.NewSelect().Model((*Like)(nil)).
		Where("target_kind = ?", kind).
		Where("target_id IN (?)", bun.In(targetIDs)).
		Count(ctx)

	return int64(count), err
}

func (r *likes) LikedVideoIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.NewSelect().Model((*Like)(nil)).
		Column("target_id").
		Where("user_id = ?", userID).
		Where("target_kind = ?", LikeTargetVideo).
		Order("created_at DESC").
		Scan(ctx, &ids)

	return ids, err
}
