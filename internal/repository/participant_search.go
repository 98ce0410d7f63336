package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/cloo-solutions/communityos/internal/service"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"
)

// SQLSTATEs raised when the vector extension or its operators are missing.
const (
	pgUndefinedFunction = "42883"
	pgUndefinedObject   = "42704"
)

// ParticipantSearchRepository answers similarity queries over participant embeddings.
type ParticipantSearchRepository struct {
	db     dbtx
	logger logrus.FieldLogger
}

func NewParticipantSearchRepository(pool *pgxpool.Pool, logger logrus.FieldLogger) *ParticipantSearchRepository {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ParticipantSearchRepository{db: pool, logger: logger}
}

// HasEmbeddings reports whether any participant has been embedded.
func (r *ParticipantSearchRepository) HasEmbeddings(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM participants WHERE embedding IS NOT NULL)`,
	).Scan(&exists)
	return exists, err
}

// RetrieveSimilar returns up to limit participants whose cosine similarity to
// embedding is at least threshold, most similar first. When the database
// cannot evaluate the vector operator the similarity is computed in memory.
func (r *ParticipantSearchRepository) RetrieveSimilar(ctx context.Context, embedding []float32, limit int, threshold float64) ([]service.ScoredProfile, error) {
	if limit <= 0 {
		return []service.ScoredProfile{}, nil
	}

	results, err := r.retrieveWithOperator(ctx, embedding, limit, threshold)
	if err == nil {
		return results, nil
	}
	if !isMissingVectorSupport(err) {
		return nil, err
	}

	r.logger.WithError(err).Warn("repository: vector operator unavailable, computing similarity in memory")
	return r.retrieveInMemory(ctx, embedding, limit, threshold)
}

func (r *ParticipantSearchRepository) retrieveWithOperator(ctx context.Context, embedding []float32, limit int, threshold float64) ([]service.ScoredProfile, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+participantColumns+`, 1 - (embedding <=> $1) AS similarity
		 FROM participants
		 WHERE embedding IS NOT NULL
		   AND 1 - (embedding <=> $1) >= $2
		 ORDER BY embedding <=> $1, id
		 LIMIT $3`,
		pgvector.NewVector(embedding), threshold, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]service.ScoredProfile, 0)
	for rows.Next() {
		var similarity float64
		p, err := scanParticipant(rows, &similarity)
		if err != nil {
			return nil, err
		}
		results = append(results, service.ScoredProfile{Profile: p, Similarity: similarity})
	}
	return results, rows.Err()
}

func (r *ParticipantSearchRepository) retrieveInMemory(ctx context.Context, embedding []float32, limit int, threshold float64) ([]service.ScoredProfile, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+participantColumns+`, embedding::text
		 FROM participants
		 WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]service.ScoredProfile, 0)
	for rows.Next() {
		var raw string
		p, err := scanParticipant(rows, &raw)
		if err != nil {
			return nil, err
		}
		var vec pgvector.Vector
		if err := vec.Scan(raw); err != nil {
			return nil, err
		}
		p.Embedding = vec.Slice()

		similarity := domain.CosineSimilarity(embedding, p.Embedding)
		if similarity < threshold {
			continue
		}
		results = append(results, service.ScoredProfile{Profile: p, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Profile.ID < results[j].Profile.ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func isMissingVectorSupport(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUndefinedFunction || pgErr.Code == pgUndefinedObject
}
