package domain

import "time"

// TicketAudit records one status change on a ticket, keeping a timestamped
// trail of every admin status write.
type TicketAudit struct {
	ID        int64
	TicketID  int64
	ActorID   int64
	OldStatus TicketStatus
	NewStatus TicketStatus
	ChangedAt time.Time
}
