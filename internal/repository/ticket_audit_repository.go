package repository

import (
	"context"

	"github.com/Sai1305/customer-support-ticketing-system/internal/domain"
)

// TicketAuditRepository records status changes for audit and reporting.
type TicketAuditRepository interface {
	Create(ctx context.Context, entry *domain.TicketAudit) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketAudit, error)
}

type ticketAuditRepository struct {
	db DB
}

// NewTicketAuditRepository instantiates repository.
func NewTicketAuditRepository(db DB) TicketAuditRepository {
	return &ticketAuditRepository{db: db}
}

func (r *ticketAuditRepository) Create(ctx context.Context, entry *domain.TicketAudit) error {
	const query = `
        INSERT INTO ticket_audits (ticket_id, actor_id, old_status, new_status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, changed_at`
	return r.db.QueryRow(ctx, query,
		entry.TicketID,
		entry.ActorID,
		entry.OldStatus,
		entry.NewStatus,
	).Scan(&entry.ID, &entry.ChangedAt)
}

func (r *ticketAuditRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketAudit, error) {
	const query = `
        SELECT id, ticket_id, actor_id, old_status, new_status, changed_at
        FROM ticket_audits WHERE ticket_id=$1 ORDER BY changed_at`

	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketAudit
	for rows.Next() {
		var entry domain.TicketAudit
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.ActorID,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.ChangedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
