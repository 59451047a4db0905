package identity

import (
	"time"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BeltRank is a member's rank in the progression ladder.
type BeltRank = string

const (
	BeltWhite  BeltRank = "white"
	BeltYellow BeltRank = "yellow"
	BeltGreen  BeltRank = "green"
	BeltBlue   BeltRank = "blue"
	BeltRed    BeltRank = "red"
	BeltBlack  BeltRank = "black"
)

// DefaultBeltRank is assigned to every profile at registration. Rank
// progression is managed elsewhere.
const DefaultBeltRank = BeltWhite

// UserProfile is the membership record persisted alongside (but distinct
// from) the identity provider's own account. Created exactly once, at
// registration, by the SessionProxy.
type UserProfile struct {
	bun.BaseModel `bun:"table:user_profiles,alias:prf"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	SubjectID     string     `bun:"subject_id,notnull,unique" json:"subjectId"`
	Name          string     `bun:"name,notnull" json:"name"`
	Email         string     `bun:"email,notnull" json:"email"`
	BeltRank      BeltRank   `bun:"belt_rank,notnull" json:"beltRank"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt,omitempty"`
}

// NewUserProfile builds the initial profile for a freshly registered
// subject. The record id is derived deterministically from the subject so a
// retried write cannot mint a second profile.
func NewUserProfile(subjectID, name, email string) *UserProfile {
	profile := &UserProfile{
		SubjectID: subjectID,
		Name:      name,
		Email:     email,
		BeltRank:  DefaultBeltRank,
	}

	if id, err := hashid.NewUUID(subjectID); err == nil {
		profile.ID = id
	} else {
		profile.ID = uuid.New()
	}

	return profile
}
