package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrVersionConflict is returned when an optimistic-lock update loses a
// race: the row's version moved since it was read.
var ErrVersionConflict = errors.New("issue version conflict")

// Querier is the subset of pgx satisfied by both *pgxpool.Pool and
// pgx.Tx, so every repository can run on the pool or inside a
// transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Set bundles every repository bound to one Querier. Lifecycle
// operations receive a tx-bound Set so the status update and its audit
// insert commit together or not at all.
type Set struct {
	Issues        IssueRepository
	Assignments   AssignmentRepository
	Escalations   EscalationRepository
	Resolutions   ResolutionRepository
	Rejects       RejectRepository
	ReRaises      ReRaiseRepository
	Attachments   AttachmentRepository
	Notifications NotificationRepository
}

// NewSet binds all repositories to the given querier.
func NewSet(q Querier) Set {
	return Set{
		Issues:        NewIssueRepository(q),
		Assignments:   NewAssignmentRepository(q),
		Escalations:   NewEscalationRepository(q),
		Resolutions:   NewResolutionRepository(q),
		Rejects:       NewRejectRepository(q),
		ReRaises:      NewReRaiseRepository(q),
		Attachments:   NewAttachmentRepository(q),
		Notifications: NewNotificationRepository(q),
	}
}

// TxRunner executes a function against a transaction-bound Set.
type TxRunner interface {
	InTx(ctx context.Context, fn func(Set) error) error
}

type pgxTxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner builds a TxRunner over the pgx pool.
func NewTxRunner(pool *pgxpool.Pool) TxRunner {
	return &pgxTxRunner{pool: pool}
}

func (r *pgxTxRunner) InTx(ctx context.Context, fn func(Set) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(NewSet(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
