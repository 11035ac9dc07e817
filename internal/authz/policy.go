// Package authz holds the pure authorization decisions. Nothing here
// performs I/O; callers resolve the identity and the resource owner
// first, then ask for a verdict before touching the store.
package authz

import (
	"errors"

	"github.com/google/uuid"

	"github.com/askforge/askforge/internal/auth"
	"github.com/askforge/askforge/internal/models"
)

// ErrForbidden is the single negative verdict. Callers map it to their
// own failure taxonomy; the policy itself doesn't know about HTTP.
var ErrForbidden = errors.New("forbidden")

// Operation names every role-gated mutation, so the role policy is one
// auditable table rather than conditionals scattered through handlers.
type Operation string

const (
	OpCreateChannel Operation = "channel.create"
	OpCreateAdmin   Operation = "admin.create"
	OpCreatePost    Operation = "post.create"
	OpCreateComment Operation = "comment.create"
	OpAiHelp        Operation = "post.ai_help"
)

// operationRoles maps each gated operation to the roles allowed to
// perform it. Operations absent from the table are open to any
// authenticated caller.
var operationRoles = map[Operation][]models.Role{
	OpCreateChannel: {models.RoleAdmin},
	OpCreateAdmin:   {models.RoleAdmin},
	OpCreatePost:    {models.RoleUser, models.RoleAdmin},
	OpCreateComment: {models.RoleUser, models.RoleAdmin},
	OpAiHelp:        {models.RoleUser, models.RoleAdmin},
}

// RequireRole allows iff the identity holds exactly the given role.
func RequireRole(id *auth.Identity, role models.Role) error {
	if id == nil || id.Role != role {
		return ErrForbidden
	}
	return nil
}

// RequireOperation allows iff the identity's role appears in the
// policy table for op.
func RequireOperation(id *auth.Identity, op Operation) error {
	if id == nil {
		return ErrForbidden
	}
	roles, gated := operationRoles[op]
	if !gated {
		return nil
	}
	for _, r := range roles {
		if id.Role == r {
			return nil
		}
	}
	return ErrForbidden
}

// RequireOwnership allows iff the identity is the resource owner.
// Resolution and acceptance both route through this: only the post's
// author may fire either transition.
func RequireOwnership(id *auth.Identity, ownerID uuid.UUID) error {
	if id == nil || id.UserID != ownerID {
		return ErrForbidden
	}
	return nil
}
