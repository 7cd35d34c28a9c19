package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the persisted account record. Password always holds the
// bcrypt hash, never the plaintext.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
