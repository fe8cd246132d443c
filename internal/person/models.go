package person

import (
	"time"

	"github.com/google/uuid"
)

// Person is a directory entry resolvable by login email. Removed people stay
// in the table for audit references but never resolve for new requests.
type Person struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Title       *string   `json:"title,omitempty" db:"title"`
	IsRemoved   bool      `json:"is_removed" db:"is_removed"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
