package types

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
)

// Actor is the authenticated identity a service call is made on behalf of.
type Actor struct {
	UserID uuid.UUID
	Role   enums.ActorRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == enums.ActorRoleAdmin
}

func (a Actor) IsSystem() bool {
	return a.Role == enums.ActorRoleSystem
}

// Owns reports whether the actor is the given user.
func (a Actor) Owns(userID uuid.UUID) bool {
	return a.UserID != uuid.Nil && a.UserID == userID
}

// SystemActor is used by background jobs that act without a user.
func SystemActor() Actor {
	return Actor{Role: enums.ActorRoleSystem}
}
