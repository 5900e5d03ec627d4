package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sai1305/customer-support-ticketing-system/internal/authz"
	"github.com/Sai1305/customer-support-ticketing-system/internal/domain"
	"github.com/Sai1305/customer-support-ticketing-system/internal/events"
	"github.com/Sai1305/customer-support-ticketing-system/internal/repository"
	apperrors "github.com/Sai1305/customer-support-ticketing-system/pkg/util/errorutil"
)

// TicketService coordinates the ticket lifecycle. Reads go through the
// pool-backed repository; every mutation runs inside its own unit of work.
type TicketService struct {
	tickets    repository.TicketRepository
	audits     repository.TicketAuditRepository
	tx         repository.TxManager
	dispatcher events.Dispatcher
}

// TicketDependencies bundles requirements for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	AuditRepo  repository.TicketAuditRepository
	TxManager  repository.TxManager
	Dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		audits:     deps.AuditRepo,
		tx:         deps.TxManager,
		dispatcher: deps.Dispatcher,
	}
}

// TicketCreateInput describes ticket creation payload. Any status supplied
// by the caller is ignored; new tickets always start Open.
type TicketCreateInput struct {
	Subject     string
	Description string
	Category    domain.TicketCategory
	Priority    domain.TicketPriority
}

// TicketUpdateInput carries the fields a PUT may change. Nil means leave
// unchanged. Status, AssignedAgent and InternalNotes are admin-only.
type TicketUpdateInput struct {
	Subject       *string
	Description   *string
	Category      *domain.TicketCategory
	Priority      *domain.TicketPriority
	Status        *domain.TicketStatus
	AssignedAgent *string
	InternalNotes *string
}

func (in TicketUpdateInput) hasContentFields() bool {
	return in.Subject != nil || in.Description != nil || in.Category != nil || in.Priority != nil
}

func (in TicketUpdateInput) hasAdminFields() bool {
	return in.Status != nil || in.AssignedAgent != nil || in.InternalNotes != nil
}

// TicketListFilter describes listing filters on top of the policy scope.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Categories []domain.TicketCategory
	Limit      int
	Offset     int
}

// Create validates input and stores a new Open ticket owned by the actor.
func (s *TicketService) Create(ctx context.Context, actor *authz.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	if subject == "" || description == "" {
		return nil, apperrors.NewValidationError("subject and description are required", nil)
	}
	if !input.Category.Valid() {
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": input.Category})
	}
	if !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
	}

	ticket := &domain.Ticket{
		Subject:     subject,
		Description: description,
		Category:    input.Category,
		Priority:    input.Priority,
		Status:      domain.TicketStatusOpen,
		UserID:      actor.UserID,
	}

	uow, err := s.tx.Begin(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	defer uow.Rollback(ctx) //nolint:errcheck

	if err := uow.Tickets().Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.TicketCreatedPayload{
			Subject:  ticket.Subject,
			Category: ticket.Category,
			Priority: ticket.Priority,
		},
	})
	return ticket, nil
}

// Get fetches a single ticket, enforcing the read policy.
func (s *TicketService) Get(ctx context.Context, actor *authz.Actor, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := authz.Decide(actor, ticket, authz.OpRead); err != nil {
		return nil, err
	}
	return ticket, nil
}

// List returns tickets visible to the actor, newest first.
func (s *TicketService) List(ctx context.Context, actor *authz.Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	scope, err := authz.ListScope(actor)
	if err != nil {
		return nil, err
	}
	repoFilter := repository.TicketFilter{
		OwnerID:    scope.OwnerID,
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		Categories: filter.Categories,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	tickets, err := s.tickets.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Update applies field-level changes under the policy. The whole request is
// authorized before anything is written: a member request carrying admin
// fields fails without mutating the ticket. Status changes append an audit
// row in the same transaction.
func (s *TicketService) Update(ctx context.Context, actor *authz.Actor, ticketID int64, input TicketUpdateInput) (*domain.Ticket, error) {
	if !input.hasContentFields() && !input.hasAdminFields() {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}

	uow, err := s.tx.Begin(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	defer uow.Rollback(ctx) //nolint:errcheck

	ticket, err := uow.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if input.hasContentFields() {
		if err := authz.Decide(actor, ticket, authz.OpEditContent); err != nil {
			return nil, err
		}
	}
	if input.Status != nil {
		if err := authz.Decide(actor, ticket, authz.OpChangeStatus); err != nil {
			return nil, err
		}
	}
	if input.AssignedAgent != nil {
		if err := authz.Decide(actor, ticket, authz.OpAssignAgent); err != nil {
			return nil, err
		}
	}
	if input.InternalNotes != nil {
		if err := authz.Decide(actor, ticket, authz.OpEditInternalNotes); err != nil {
			return nil, err
		}
	}

	oldStatus := ticket.Status
	if err := applyUpdate(ticket, input); err != nil {
		return nil, err
	}

	if err := uow.Tickets().Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if ticket.Status != oldStatus {
		entry := &domain.TicketAudit{
			TicketID:  ticket.ID,
			ActorID:   actor.UserID,
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		}
		if err := uow.Audits().Create(ctx, entry); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, apperrors.MapError(err)
	}

	if ticket.Status != oldStatus {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Actor:    eventActor(actor),
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	if input.AssignedAgent != nil {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			Actor:    eventActor(actor),
			Payload: events.TicketAssignedPayload{
				AssignedAgent: ticket.AssignedAgent,
			},
		})
	}
	return ticket, nil
}

// Delete removes a ticket. Admin only, via the policy.
func (s *TicketService) Delete(ctx context.Context, actor *authz.Actor, ticketID int64) error {
	uow, err := s.tx.Begin(ctx)
	if err != nil {
		return apperrors.MapError(err)
	}
	defer uow.Rollback(ctx) //nolint:errcheck

	ticket, err := uow.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := authz.Decide(actor, ticket, authz.OpDelete); err != nil {
		return err
	}
	if err := uow.Tickets().Delete(ctx, ticketID); err != nil {
		return apperrors.MapError(err)
	}
	if err := uow.Commit(ctx); err != nil {
		return apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticketID,
		Actor:    eventActor(actor),
		Payload:  events.TicketDeletedPayload{Subject: ticket.Subject},
	})
	return nil
}

// AuditTrail returns the status-change history of a ticket.
func (s *TicketService) AuditTrail(ctx context.Context, actor *authz.Actor, ticketID int64) ([]domain.TicketAudit, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := authz.Decide(actor, ticket, authz.OpViewAudit); err != nil {
		return nil, err
	}
	entries, err := s.audits.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// applyUpdate copies validated input fields onto the ticket. Status writes
// are unrestricted among the four states; the policy already decided who
// may perform them.
func applyUpdate(ticket *domain.Ticket, input TicketUpdateInput) error {
	if input.Subject != nil {
		subject := strings.TrimSpace(*input.Subject)
		if subject == "" {
			return apperrors.NewValidationError("subject must not be empty", nil)
		}
		ticket.Subject = subject
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return apperrors.NewValidationError("description must not be empty", nil)
		}
		ticket.Description = description
	}
	if input.Category != nil {
		if !input.Category.Valid() {
			return apperrors.NewValidationError("invalid category", map[string]any{"category": *input.Category})
		}
		ticket.Category = *input.Category
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
		}
		ticket.Priority = *input.Priority
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
		}
		ticket.Status = *input.Status
	}
	if input.AssignedAgent != nil {
		agent := strings.TrimSpace(*input.AssignedAgent)
		if agent == "" {
			ticket.AssignedAgent = nil
		} else {
			ticket.AssignedAgent = &agent
		}
	}
	if input.InternalNotes != nil {
		notes := *input.InternalNotes
		ticket.InternalNotes = &notes
	}
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func eventActor(actor *authz.Actor) events.Actor {
	if actor == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: actor.UserID, Role: actor.Role}
}
