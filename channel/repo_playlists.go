package channel

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ErrPlaylistNotFound = errors.New("playlist not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("PLAYLIST_NOT_FOUND")

// Playlists stores owner-curated video lists.
type Playlists interface {
	Add(ctx context.Context, playlist *Playlist) (*Playlist, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Playlist, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Playlist, error)
	Save(ctx context.Context, playlist *Playlist) (*Playlist, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type playlists struct {
	repository.Repository[*Playlist]
	db *bun.DB
}

var _ Playlists = (*playlists)(nil)

func NewPlaylistsRepository(db *bun.DB) Playlists {
	repo := repository.NewRepository[*Playlist](db, repository.ModelHandlers[*Playlist]{
		NewRecord: func() *Playlist { return &Playlist{} },
		GetID: func(p *Playlist) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Playlist, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &playlists{Repository: repo, db: db}
}

func (r *playlists) Add(ctx context.Context, playlist *Playlist) (*Playlist, error) {
	if playlist.ID == uuid.Nil {
		playlist.ID = uuid.New()
	}

	if playlist.VideoIDs == nil {
		playlist.VideoIDs = []string{}
	}

	return r.Repository.Create(ctx, playlist)
}

func (r *playlists) GetByID(ctx context.Context, id uuid.UUID) (*Playlist, error) {
	record := &Playlist{}
	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrPlaylistNotFound
		}
		return nil, err
	}

	return record, nil
}

func (r *playlists) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Playlist, error) {
	var records []*Playlist
	err := r.db.NewSelect().Model(&records).
		Where("?TableAlias.owner_id = ?", ownerID).
		Order("created_at DESC").
		Scan(ctx)

	return records, err
}

func (r *playlists) Save(ctx context.Context, playlist *Playlist) (*Playlist, error) {
	now := time.Now()
	playlist.UpdatedAt = &now

	_, err := r.db.NewUpdate().Model(playlist).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return playlist, nil
}

func (r *playlists) Remove(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().Model((*Playlist)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrPlaylistNotFound
	}

	return nil
}

// AddVideo appends a video id once, keeping insertion order.
func (p *Playlist) AddVideo(videoID string) bool {
	for _, id := range p.VideoIDs {
		if id == videoID {
			return false
		}
	}

	p.VideoIDs = append(p.VideoIDs, videoID)

	return true
}

// RemoveVideo drops a video id if present.
func (p *Playlist) RemoveVideo(videoID string) bool {
	for i, id := range p.VideoIDs {
		if id == videoID {
			p.VideoIDs = append(p.VideoIDs[:i], p.VideoIDs[i+1:]...)
			return true
		}
	}

	return false
}
