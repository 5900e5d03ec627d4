package dto

import (
	"time"

	"github.com/Sai1305/customer-support-ticketing-system/internal/domain"
)

// CreateTicketRequest payload. Status is deliberately absent: new tickets
// always start Open no matter what the caller sends.
type CreateTicketRequest struct {
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
}

// UpdateTicketRequest payload; absent fields stay unchanged. Status,
// assigned_agent and internal_notes require the admin role.
type UpdateTicketRequest struct {
	Subject       *string                `json:"subject"`
	Description   *string                `json:"description"`
	Category      *domain.TicketCategory `json:"category"`
	Priority      *domain.TicketPriority `json:"priority"`
	Status        *domain.TicketStatus   `json:"status"`
	AssignedAgent *string                `json:"assigned_agent"`
	InternalNotes *string                `json:"internal_notes"`
}

// TicketResponse is the API view of a ticket. InternalNotes is only
// populated for admin callers.
type TicketResponse struct {
	ID            int64                 `json:"id"`
	Subject       string                `json:"subject"`
	Description   string                `json:"description"`
	Category      domain.TicketCategory `json:"category"`
	Priority      domain.TicketPriority `json:"priority"`
	Status        domain.TicketStatus   `json:"status"`
	AssignedAgent *string               `json:"assigned_agent"`
	InternalNotes *string               `json:"internal_notes,omitempty"`
	UserID        int64                 `json:"user_id"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket, hiding internal notes from
// non-admin callers.
func NewTicketResponse(ticket *domain.Ticket, includeNotes bool) TicketResponse {
	resp := TicketResponse{
		ID:            ticket.ID,
		Subject:       ticket.Subject,
		Description:   ticket.Description,
		Category:      ticket.Category,
		Priority:      ticket.Priority,
		Status:        ticket.Status,
		AssignedAgent: ticket.AssignedAgent,
		UserID:        ticket.UserID,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
	if includeNotes {
		resp.InternalNotes = ticket.InternalNotes
	}
	return resp
}

// TicketAuditResponse is one audit trail row.
type TicketAuditResponse struct {
	ID        int64               `json:"id"`
	TicketID  int64               `json:"ticket_id"`
	ActorID   int64               `json:"actor_id"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	ChangedAt time.Time           `json:"changed_at"`
}
