package models

import (
	"slices"
	"time"

	"github.com/uptrace/bun"
)

// Trainer leads sessions. Specializations holds session types.
type Trainer struct {
	bun.BaseModel `bun:"table:trainers,alias:t"`

	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	Name            string    `bun:"name,notnull" json:"name"`
	Email           string    `bun:"email,notnull,unique" json:"email"`
	Phone           string    `bun:"phone,notnull" json:"phone"`
	Specializations []string  `bun:"specializations,array,notnull" json:"specializations"`
	Bio             *string   `bun:"bio" json:"bio,omitempty"`
	IsActive        bool      `bun:"is_active,notnull,default:true" json:"is_active"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Teaches reports whether t lists typ among its specializations.
func (t *Trainer) Teaches(typ SessionType) bool {
	return slices.Contains(t.Specializations, string(typ))
}
