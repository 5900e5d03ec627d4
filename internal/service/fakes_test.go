package service

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Sai1305/customer-support-ticketing-system/internal/domain"
	"github.com/Sai1305/customer-support-ticketing-system/internal/repository"
)

// memStore is a shared in-memory backing for the fake repositories used
// across the service tests.
type memStore struct {
	users        map[int64]domain.User
	tickets      map[int64]domain.Ticket
	audits       []domain.TicketAudit
	nextUserID   int64
	nextTicketID int64
	nextAuditID  int64
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[int64]domain.User),
		tickets: make(map[int64]domain.Ticket),
	}
}

func (s *memStore) addUser(user domain.User) domain.User {
	if user.ID == 0 {
		s.nextUserID++
		user.ID = s.nextUserID
	} else if user.ID > s.nextUserID {
		s.nextUserID = user.ID
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[user.ID] = user
	return user
}

func (s *memStore) addTicket(ticket domain.Ticket) domain.Ticket {
	if ticket.ID == 0 {
		s.nextTicketID++
		ticket.ID = s.nextTicketID
	} else if ticket.ID > s.nextTicketID {
		s.nextTicketID = ticket.ID
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	if ticket.UpdatedAt.IsZero() {
		ticket.UpdatedAt = ticket.CreatedAt
	}
	s.tickets[ticket.ID] = ticket
	return ticket
}

type fakeUserRepo struct {
	store *memStore
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	*user = r.store.addUser(*user)
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.store.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.store.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := r.store.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.store.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	result := make([]domain.User, 0, len(r.store.users))
	for _, user := range r.store.users {
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.store.users)), nil
}

type fakeTicketRepo struct {
	store *memStore
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	*ticket = r.store.addTicket(*ticket)
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.store.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	r.store.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := r.store.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.store.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.store.tickets, id)
	return nil
}

func (r *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.store.tickets {
		if filter.OwnerID != nil && ticket.UserID != *filter.OwnerID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, ticket.Priority) {
			continue
		}
		if len(filter.Categories) > 0 && !containsCategory(filter.Categories, ticket.Category) {
			continue
		}
		if filter.CreatedFrom != nil && ticket.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && !ticket.CreatedAt.Before(*filter.CreatedTo) {
			continue
		}
		result = append(result, ticket)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if filter.Offset > 0 && filter.Offset < len(result) {
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *fakeTicketRepo) CountByOwner(_ context.Context) (map[int64]int64, error) {
	counts := make(map[int64]int64)
	for _, ticket := range r.store.tickets {
		counts[ticket.UserID]++
	}
	return counts, nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func containsPriority(priorities []domain.TicketPriority, priority domain.TicketPriority) bool {
	for _, p := range priorities {
		if p == priority {
			return true
		}
	}
	return false
}

func containsCategory(categories []domain.TicketCategory, category domain.TicketCategory) bool {
	for _, c := range categories {
		if c == category {
			return true
		}
	}
	return false
}

type fakeAuditRepo struct {
	store *memStore
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.TicketAudit) error {
	r.store.nextAuditID++
	entry.ID = r.store.nextAuditID
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = time.Now()
	}
	r.store.audits = append(r.store.audits, *entry)
	return nil
}

func (r *fakeAuditRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.TicketAudit, error) {
	var result []domain.TicketAudit
	for _, entry := range r.store.audits {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type fakeUnitOfWork struct {
	store *memStore
}

func (u *fakeUnitOfWork) Users() repository.UserRepository         { return &fakeUserRepo{store: u.store} }
func (u *fakeUnitOfWork) Tickets() repository.TicketRepository     { return &fakeTicketRepo{store: u.store} }
func (u *fakeUnitOfWork) Audits() repository.TicketAuditRepository { return &fakeAuditRepo{store: u.store} }
func (u *fakeUnitOfWork) Commit(context.Context) error             { return nil }
func (u *fakeUnitOfWork) Rollback(context.Context) error           { return nil }

type fakeTxManager struct {
	store *memStore
}

func (m *fakeTxManager) Begin(context.Context) (repository.UnitOfWork, error) {
	return &fakeUnitOfWork{store: m.store}, nil
}

func newTicketServiceForTest(store *memStore) *TicketService {
	return NewTicketService(TicketDependencies{
		TicketRepo: &fakeTicketRepo{store: store},
		AuditRepo:  &fakeAuditRepo{store: store},
		TxManager:  &fakeTxManager{store: store},
	})
}
