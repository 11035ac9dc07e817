package authz_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/askforge/askforge/internal/auth"
	"github.com/askforge/askforge/internal/authz"
	"github.com/askforge/askforge/internal/models"
)

func TestRequireRole(t *testing.T) {
	admin := &auth.Identity{UserID: uuid.New(), Role: models.RoleAdmin}
	user := &auth.Identity{UserID: uuid.New(), Role: models.RoleUser}

	assert.NoError(t, authz.RequireRole(admin, models.RoleAdmin))
	assert.ErrorIs(t, authz.RequireRole(user, models.RoleAdmin), authz.ErrForbidden)
	assert.ErrorIs(t, authz.RequireRole(nil, models.RoleAdmin), authz.ErrForbidden)
}

func TestRequireOperation(t *testing.T) {
	admin := &auth.Identity{UserID: uuid.New(), Role: models.RoleAdmin}
	user := &auth.Identity{UserID: uuid.New(), Role: models.RoleUser}

	tests := []struct {
		name    string
		id      *auth.Identity
		op      authz.Operation
		allowed bool
	}{
		{"admin creates channel", admin, authz.OpCreateChannel, true},
		{"user cannot create channel", user, authz.OpCreateChannel, false},
		{"admin creates admin", admin, authz.OpCreateAdmin, true},
		{"user cannot create admin", user, authz.OpCreateAdmin, false},
		{"user creates post", user, authz.OpCreatePost, true},
		{"admin creates post", admin, authz.OpCreatePost, true},
		{"user comments", user, authz.OpCreateComment, true},
		{"user asks ai", user, authz.OpAiHelp, true},
		{"nil identity always refused", nil, authz.OpCreatePost, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.RequireOperation(tt.id, tt.op)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, authz.ErrForbidden)
			}
		})
	}
}

func TestRequireOwnership(t *testing.T) {
	owner := uuid.New()
	id := &auth.Identity{UserID: owner, Role: models.RoleUser}

	assert.NoError(t, authz.RequireOwnership(id, owner))
	assert.ErrorIs(t, authz.RequireOwnership(id, uuid.New()), authz.ErrForbidden)
	assert.ErrorIs(t, authz.RequireOwnership(nil, owner), authz.ErrForbidden)
}

func TestRequireOwnership_AdminGetsNoBypass(t *testing.T) {
	// Ownership is ownership: an admin who didn't write the post still
	// can't resolve it.
	admin := &auth.Identity{UserID: uuid.New(), Role: models.RoleAdmin}
	assert.ErrorIs(t, authz.RequireOwnership(admin, uuid.New()), authz.ErrForbidden)
}
