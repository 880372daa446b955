package service

import (
	"backend/internal/model"

	"github.com/google/uuid"
)

// Identity is the authenticated caller as established by the auth
// middleware: who they are, what they may decide, and which organization
// scopes their queries.
type Identity struct {
	UserID         uuid.UUID
	Role           model.Role
	OrganizationID uuid.UUID
}
