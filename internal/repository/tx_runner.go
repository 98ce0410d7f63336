package repository

import (
	"context"

	"github.com/cloo-solutions/communityos/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner runs service work inside a single Postgres transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) WithTx(ctx context.Context, fn func(repos service.TxRepositories) error) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(txRepositories{
			participants: NewParticipantRepositoryWithTx(tx),
			jobs:         NewEmbeddingJobRepositoryWithTx(tx),
		})
	})
	return translateError(err)
}

type txRepositories struct {
	participants *ParticipantRepository
	jobs         *EmbeddingJobRepository
}

func (r txRepositories) Participants() service.ParticipantRepository { return r.participants }

func (r txRepositories) EmbeddingJobs() service.EmbeddingJobRepository { return r.jobs }
