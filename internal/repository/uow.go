package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UnitOfWork scopes repository access to a single transaction. Each request
// begins one explicitly, and either commits or rolls back before returning
// to the caller; no ambient session state survives a request.
type UnitOfWork interface {
	Users() UserRepository
	Tickets() TicketRepository
	Audits() TicketAuditRepository
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxManager begins units of work.
type TxManager interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

type pgxTxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager returns a Postgres-backed transaction manager.
func NewTxManager(pool *pgxpool.Pool) TxManager {
	return &pgxTxManager{pool: pool}
}

func (m *pgxTxManager) Begin(ctx context.Context) (UnitOfWork, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxUnitOfWork{tx: tx}, nil
}

type pgxUnitOfWork struct {
	tx pgx.Tx
}

func (u *pgxUnitOfWork) Users() UserRepository {
	return NewUserRepository(u.tx)
}

func (u *pgxUnitOfWork) Tickets() TicketRepository {
	return NewTicketRepository(u.tx)
}

func (u *pgxUnitOfWork) Audits() TicketAuditRepository {
	return NewTicketAuditRepository(u.tx)
}

func (u *pgxUnitOfWork) Commit(ctx context.Context) error {
	return u.tx.Commit(ctx)
}

func (u *pgxUnitOfWork) Rollback(ctx context.Context) error {
	err := u.tx.Rollback(ctx)
	if err == pgx.ErrTxClosed {
		return nil
	}
	return err
}
