// Package authz holds the access-control rules for tickets. The policy is a
// pure function over (actor, ticket, operation); it never touches storage
// and has exactly one outcome for every input.
package authz

import (
	"github.com/Sai1305/customer-support-ticketing-system/internal/domain"
	apperrors "github.com/Sai1305/customer-support-ticketing-system/pkg/util/errorutil"
)

// Operation identifies a requested mutation or read on a ticket.
type Operation string

const (
	OpRead              Operation = "read"
	OpEditContent       Operation = "edit_content"
	OpChangeStatus      Operation = "change_status"
	OpAssignAgent       Operation = "assign_agent"
	OpEditInternalNotes Operation = "edit_internal_notes"
	OpViewAudit         Operation = "view_audit"
	OpDelete            Operation = "delete"
)

// Actor is the authenticated principal a decision is made for.
type Actor struct {
	UserID int64
	Role   domain.Role
}

// Decide returns nil when the actor may perform op on the ticket, an
// UNAUTHORIZED error when there is no actor, and FORBIDDEN otherwise.
// Rules, in precedence order: no actor denies everything; admins may do
// everything; owners may read and edit content fields of their own tickets;
// everyone else is denied, including reads.
func Decide(actor *Actor, ticket *domain.Ticket, op Operation) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleMember:
		if ticket.UserID != actor.UserID {
			return apperrors.NewForbidden("access denied")
		}
		switch op {
		case OpRead, OpEditContent:
			return nil
		default:
			return apperrors.NewForbidden("admin privileges required")
		}
	default:
		return apperrors.NewForbidden("unknown role")
	}
}

// Scope describes the ticket set visible to an actor when listing.
type Scope struct {
	// OwnerID restricts the listing to one owner when non-nil. Nil means
	// every ticket is visible.
	OwnerID *int64
}

// ListScope returns the visibility filter for listing operations. It must
// yield the same visible set as applying Decide(actor, t, OpRead) per
// ticket.
func ListScope(actor *Actor) (Scope, error) {
	if actor == nil {
		return Scope{}, apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role.IsAdmin() {
		return Scope{}, nil
	}
	id := actor.UserID
	return Scope{OwnerID: &id}, nil
}
