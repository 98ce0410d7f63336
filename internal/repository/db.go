package repository

import (
	"context"
	"errors"

	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// dbtx is satisfied by *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

const pgUniqueViolation = "23505"

// translateError leaves nil and domain errors untouched, reports unique
// violations as ALREADY_EXISTS and wraps anything else as a storage failure.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return domain.NewDomainErrorWithCause(domain.ErrCodeAlreadyExists, "participant already exists", err)
	}
	return domain.NewDomainErrorWithCause(
		domain.ErrStorageOperationFailed.Code, domain.ErrStorageOperationFailed.Message, err)
}
