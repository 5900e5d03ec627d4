package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. The values are the
// display strings persisted in the database and emitted in exports.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
)

// TicketStatuses lists every valid status in display order.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// Valid reports whether the status is one of the four known states.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// Valid reports whether the priority is part of the fixed vocabulary.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// TicketCategory enumerates ticket categories.
type TicketCategory string

const (
	TicketCategoryTechnical TicketCategory = "Technical"
	TicketCategoryBilling   TicketCategory = "Billing"
	TicketCategoryAccount   TicketCategory = "Account"
	TicketCategoryGeneral   TicketCategory = "General"
)

// Valid reports whether the category is part of the fixed vocabulary.
func (c TicketCategory) Valid() bool {
	switch c {
	case TicketCategoryTechnical, TicketCategoryBilling, TicketCategoryAccount, TicketCategoryGeneral:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. UserID references the owner
// and never changes after creation. AssignedAgent and InternalNotes are
// admin-only fields.
type Ticket struct {
	ID            int64
	Subject       string
	Description   string
	Category      TicketCategory
	Priority      TicketPriority
	Status        TicketStatus
	AssignedAgent *string
	InternalNotes *string
	UserID        int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
