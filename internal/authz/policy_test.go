package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sai1305/customer-support-ticketing-system/internal/domain"
	apperrors "github.com/Sai1305/customer-support-ticketing-system/pkg/util/errorutil"
)

var allOperations = []Operation{
	OpRead,
	OpEditContent,
	OpChangeStatus,
	OpAssignAgent,
	OpEditInternalNotes,
	OpViewAudit,
	OpDelete,
}

func TestDecideUnauthenticated(t *testing.T) {
	ticket := &domain.Ticket{ID: 1, UserID: 7}
	for _, op := range allOperations {
		err := Decide(nil, ticket, op)
		require.Error(t, err, "op %s", op)
		assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"), "op %s", op)
	}
}

func TestDecideAdminAllowsEverything(t *testing.T) {
	admin := &Actor{UserID: 1, Role: domain.RoleAdmin}
	ticket := &domain.Ticket{ID: 1, UserID: 7}
	for _, op := range allOperations {
		assert.NoError(t, Decide(admin, ticket, op), "op %s", op)
	}
}

func TestDecideOwner(t *testing.T) {
	owner := &Actor{UserID: 7, Role: domain.RoleMember}
	ticket := &domain.Ticket{ID: 1, UserID: 7}

	assert.NoError(t, Decide(owner, ticket, OpRead))
	assert.NoError(t, Decide(owner, ticket, OpEditContent))

	for _, op := range []Operation{OpChangeStatus, OpAssignAgent, OpEditInternalNotes, OpViewAudit, OpDelete} {
		err := Decide(owner, ticket, op)
		require.Error(t, err, "op %s", op)
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"), "op %s", op)
	}
}

func TestDecideNonOwnerDeniedEverything(t *testing.T) {
	stranger := &Actor{UserID: 8, Role: domain.RoleMember}
	ticket := &domain.Ticket{ID: 1, UserID: 7}
	for _, op := range allOperations {
		err := Decide(stranger, ticket, op)
		require.Error(t, err, "op %s", op)
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"), "op %s", op)
	}
}

func TestListScope(t *testing.T) {
	_, err := ListScope(nil)
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	adminScope, err := ListScope(&Actor{UserID: 1, Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Nil(t, adminScope.OwnerID)

	memberScope, err := ListScope(&Actor{UserID: 7, Role: domain.RoleMember})
	require.NoError(t, err)
	require.NotNil(t, memberScope.OwnerID)
	assert.Equal(t, int64(7), *memberScope.OwnerID)
}

// The list scope must produce exactly the set visible under per-ticket read
// decisions.
func TestListScopeMatchesPerItemReads(t *testing.T) {
	tickets := []domain.Ticket{
		{ID: 1, UserID: 7},
		{ID: 2, UserID: 8},
		{ID: 3, UserID: 7},
	}
	actors := []*Actor{
		{UserID: 7, Role: domain.RoleMember},
		{UserID: 8, Role: domain.RoleMember},
		{UserID: 1, Role: domain.RoleAdmin},
	}

	for _, actor := range actors {
		scope, err := ListScope(actor)
		require.NoError(t, err)

		for i := range tickets {
			ticket := &tickets[i]
			inScope := scope.OwnerID == nil || *scope.OwnerID == ticket.UserID
			readable := Decide(actor, ticket, OpRead) == nil
			assert.Equal(t, readable, inScope, "actor %d ticket %d", actor.UserID, ticket.ID)
		}
	}
}
