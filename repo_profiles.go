package identity

import (
	"context"
	"database/sql"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrProfileNotFound is returned when no profile exists for a subject.
var ErrProfileNotFound = goerrors.New("membership profile not found", goerrors.CategoryNotFound).
	WithTextCode("PROFILE_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// Profiles is the persistence surface for membership profiles. It carries
// the narrow ProfileStore contract the SessionProxy consumes alongside the
// full repository.
type Profiles interface {
	repository.Repository[*UserProfile]
	ProfileStore

	GetBySubject(ctx context.Context, subjectID string) (*UserProfile, error)
}

type profiles struct {
	repository.Repository[*UserProfile]
	db *bun.DB
}

var (
	_ Profiles     = (*profiles)(nil)
	_ ProfileStore = (*profiles)(nil)
)

// NewProfilesRepository returns the bun-backed Profiles repository. It also
// satisfies ProfileStore, which is the narrow surface the SessionProxy uses.
func NewProfilesRepository(db *bun.DB) Profiles {
	repo := repository.NewRepository[*UserProfile](db, repository.ModelHandlers[*UserProfile]{
		NewRecord: func() *UserProfile { return &UserProfile{} },
		GetID: func(p *UserProfile) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *UserProfile, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &profiles{
		Repository: repo,
		db:         db,
	}
}

// CreateProfilesTable creates the backing table when it does not exist yet.
// Meant for boot-time wiring and tests; real deployments migrate.
func CreateProfilesTable(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*UserProfile)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create user_profiles table")
	}
	return nil
}

func (r *profiles) GetBySubject(ctx context.Context, subjectID string) (*UserProfile, error) {
	profile := &UserProfile{}
	err := r.db.NewSelect().
		Model(profile).
		Where("subject_id = ?", subjectID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound.WithMetadata(map[string]any{
				"subject_id": subjectID,
			})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load membership profile")
	}
	return profile, nil
}

// WriteProfile implements ProfileStore.
func (r *profiles) WriteProfile(ctx context.Context, profile *UserProfile) (*UserProfile, error) {
	return r.Create(ctx, profile)
}

// ReadProfile implements ProfileStore.
func (r *profiles) ReadProfile(ctx context.Context, subjectID string) (*UserProfile, error) {
	return r.GetBySubject(ctx, subjectID)
}
