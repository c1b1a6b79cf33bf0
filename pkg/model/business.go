package model

import "time"

// Business is the shared dashboard resource whose edit page is guarded by
// the collaborative lock. Editing rights belong to the owner and to every
// identity in Editors.
type Business struct {
	ID        string    `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string    `bson:"name" json:"name" validate:"required,min=1,max=256"`
	Owner     string    `bson:"owner" json:"owner" validate:"required"`
	Editors   []string  `bson:"editors" json:"editors"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// CanBeEditedBy reports whether the given identity holds edit rights.
func (b *Business) CanBeEditedBy(identity string) bool {
	if b.Owner == identity {
		return true
	}
	for _, e := range b.Editors {
		if e == identity {
			return true
		}
	}
	return false
}
