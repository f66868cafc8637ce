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

// ErrVideoNotFound is returned for lookups that match nothing.
var ErrVideoNotFound = errors.New("video not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("VIDEO_NOT_FOUND")

// ListVideosOptions filters and pages the catalog listing.
type ListVideosOptions struct {
	Page    int
	Limit   int
	Query   string
	SortBy  string
	SortAsc bool
	OwnerID uuid.UUID
	// IncludeUnpublished widens the listing beyond published videos;
	// only the dashboard uses it.
	IncludeUnpublished bool
}

// Videos is the video catalog store.
type Videos interface {
	Publish(ctx context.Context, video *Video) (*Video, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Video, error)
	GetAndCountView(ctx context.Context, id uuid.UUID) (*Video, error)
	List(ctx context.Context, opts ListVideosOptions) ([]*Video, int, error)
	Save(ctx context.Context, video *Video) (*Video, error)
	Remove(ctx context.Context, id uuid.UUID) error

	ByIDs(ctx context.Context, ids []uuid.UUID) ([]*Video, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	SumViewsByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	IDsByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)
}

type videos struct {
	repository.Repository[*Video]
	db *bun.DB
}

var _ Videos = (*videos)(nil)

func NewVideosRepository(db *bun.DB) Videos {
	repo := repository.NewRepository[*Video](db, repository.ModelHandlers[*Video]{
		NewRecord: func() *Video { return &Video{} },
		GetID: func(v *Video) uuid.UUID {
			if v == nil {
				return uuid.Nil
			}
			return v.ID
		},
		SetID: func(v *Video, id uuid.UUID) {
			if v != nil {
				v.ID = id
			}
		},
	})

	return &videos{Repository: repo, db: db}
}

func (r *videos) Publish(ctx context.Context, video *Video) (*Video, error) {
	if video.ID == uuid.Nil {
		video.ID = uuid.New()
	}
	return r.Repository.Create(ctx, video)
}

func (r *videos) GetByID(ctx context.Context, id uuid.UUID) (*Video, error) {
	record := &Video{}
	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	return record, nil
}

// GetAndCountView bumps the view counter in the same statement that reads
// the record, so concurrent viewers never lose an increment.
func (r *videos) GetAndCountView(ctx context.Context, id uuid.UUID) (*Video, error) {
	record := &Video{}
	err := r.db.NewUpdate().Model(record).
		Set("views = views + 1").
		Where("?TableAlias.id = ?", id).
		Returning("*").
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	return record, nil
}

func (r *videos) List(ctx context.Context, opts ListVideosOptions) ([]*Video, int, error) {
	page, limit := normalizePage(opts.Page, opts.Limit)

	records := []*Video{}
	q := r.db.NewSelect().Model(&records)

	if !opts.IncludeUnpublished {
		q = q.Where("?TableAlias.is_published = ?", true)
	}

	if query := strings.TrimSpace(opts.Query); query != "" {
		q = q.Where("lower(?TableAlias.title) LIKE ?", "%"+strings.ToLower(query)+"%")
	}

	if opts.OwnerID != uuid.Nil {
		q = q.Where("?TableAlias.owner_id = ?", opts.OwnerID)
	}

	q = q.Order(sortExpr(opts.SortBy, opts.SortAsc)).
		Limit(limit).
		Offset((page - 1) * limit)

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *videos) Save(ctx context.Context, video *Video) (*Video, error) {
	now := time.Now()
	video.UpdatedAt = &now

	_, err := r.db.NewUpdate().Model(video).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return video, nil
}

func (r *videos) Remove(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().Model((*Video)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	return err
}

// ByIDs keeps the order of the input ids out of scope; callers that care
// about ordering sort the result themselves.
func (r *videos) ByIDs(ctx context.Context, ids []uuid.UUID) ([]*Video, error) {
	if len(ids) == 0 {
		return []*Video{}, nil
	}

	records := []*Video{}
	err := r.db.NewSelect().Model(&records).
		Where("?TableAlias.id IN (?)", bun.In(ids)).
		Scan(ctx)

	return records, err
}

func (r *videos) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	count, err := r.db.NewSelect().Model((*Video)(nil)).
		Where("owner_id = ?", ownerID).
		Count(ctx)

	return int64(count), err
}

func (r *videos) SumViewsByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.NewSelect().Model((*Video)(nil)).
		ColumnExpr("COALESCE(SUM(views), 0)").
		Where("owner_id = ?", ownerID).
		Scan(ctx, &total)

	return total, err
}

func (r *videos) IDsByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.NewSelect().Model((*Video)(nil)).
		Column("id").
		Where("owner_id = ?", ownerID).
		Scan(ctx, &ids)

	return ids, err
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

var sortableColumns = map[string]string{
	"created_at": "created_at",
	"views":      "views",
	"title":      "title",
	"duration":   "duration",
}

func sortExpr(sortBy string, asc bool) string {
	column, ok := sortableColumns[sortBy]
	if !ok {
		column = "created_at"
	}

	dir := "DESC"
	if asc {
		dir = "ASC"
	}

	return column + " " + dir
}
