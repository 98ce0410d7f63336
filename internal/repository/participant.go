package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/cloo-solutions/communityos/internal/pagination"
	"github.com/cloo-solutions/communityos/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

const topSkillsLimit = 10

// participantColumns is the canonical column order read by scanParticipant.
const participantColumns = `id, name, email, telegram, linkedin, photo, bio, enhanced_bio,
	skills, parsed_skills, interests, tags, data_sources, looking_for,
	can_help, needs_help, ai_usage,
	has_startup, startup_name, startup_stage, startup_description,
	location, timezone, experience, status, availability,
	created_at, updated_at`

type ParticipantRepository struct {
	db dbtx
}

func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{db: pool}
}

func NewParticipantRepositoryWithTx(tx pgx.Tx) *ParticipantRepository {
	return &ParticipantRepository{db: tx}
}

func scanParticipant(row rowScanner, extra ...any) (*domain.Profile, error) {
	var p domain.Profile
	dest := []any{
		&p.ID, &p.Name, &p.Email, &p.Telegram, &p.LinkedIn, &p.Photo, &p.Bio, &p.EnhancedBio,
		&p.Skills, &p.ParsedSkills, &p.Interests, &p.Tags, &p.DataSources, &p.LookingFor,
		&p.CanHelp, &p.NeedsHelp, &p.AIUsage,
		&p.HasStartup, &p.StartupName, &p.StartupStage, &p.StartupDescription,
		&p.Location, &p.Timezone, &p.Experience, &p.Status, &p.Availability,
		&p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

func scanParticipantRows(rows pgx.Rows) ([]*domain.Profile, error) {
	profiles := make([]*domain.Profile, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Upsert inserts the participant or overwrites its profile fields. The
// stored embedding and creation time are kept.
func (r *ParticipantRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	p.Normalize()

	_, err := r.db.Exec(ctx,
		`INSERT INTO participants (
			id, name, email, telegram, linkedin, photo, bio, enhanced_bio,
			skills, parsed_skills, interests, tags, data_sources, looking_for,
			can_help, needs_help, ai_usage,
			has_startup, startup_name, startup_stage, startup_description,
			location, timezone, experience, status, availability,
			created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
		         $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
		 ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			telegram = EXCLUDED.telegram,
			linkedin = EXCLUDED.linkedin,
			photo = EXCLUDED.photo,
			bio = EXCLUDED.bio,
			enhanced_bio = EXCLUDED.enhanced_bio,
			skills = EXCLUDED.skills,
			parsed_skills = EXCLUDED.parsed_skills,
			interests = EXCLUDED.interests,
			tags = EXCLUDED.tags,
			data_sources = EXCLUDED.data_sources,
			looking_for = EXCLUDED.looking_for,
			can_help = EXCLUDED.can_help,
			needs_help = EXCLUDED.needs_help,
			ai_usage = EXCLUDED.ai_usage,
			has_startup = EXCLUDED.has_startup,
			startup_name = EXCLUDED.startup_name,
			startup_stage = EXCLUDED.startup_stage,
			startup_description = EXCLUDED.startup_description,
			location = EXCLUDED.location,
			timezone = EXCLUDED.timezone,
			experience = EXCLUDED.experience,
			status = EXCLUDED.status,
			availability = EXCLUDED.availability,
			updated_at = EXCLUDED.updated_at`,
		p.ID, p.Name, p.Email, p.Telegram, p.LinkedIn, p.Photo, p.Bio, p.EnhancedBio,
		p.Skills, p.ParsedSkills, p.Interests, p.Tags, p.DataSources, p.LookingFor,
		p.CanHelp, p.NeedsHelp, p.AIUsage,
		p.HasStartup, p.StartupName, p.StartupStage, p.StartupDescription,
		p.Location, p.Timezone, p.Experience, p.Status, p.Availability,
		p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	p, err := scanParticipant(r.db.QueryRow(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListAll returns every participant without embeddings, ordered by id.
func (r *ParticipantRepository) ListAll(ctx context.Context) ([]*domain.Profile, error) {
	rows, err := r.db.Query(ctx, `SELECT `+participantColumns+` FROM participants ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanParticipantRows(rows)
}

// List returns one page ordered by created_at DESC, id DESC.
func (r *ParticipantRepository) List(ctx context.Context, filter service.ParticipantFilter) (*service.ParticipantPage, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Name != "" {
		conditions = append(conditions, "name ILIKE '%' || "+arg(escapeLike(filter.Name))+" || '%'")
	}
	if filter.Skill != "" {
		conditions = append(conditions, arg(filter.Skill)+" = ANY(skills)")
	}
	if filter.Status != "" {
		conditions = append(conditions, "LOWER(TRIM(status)) = "+arg(string(filter.Status)))
	}
	if filter.Cursor != nil {
		ts := arg(filter.Cursor.Timestamp)
		id := arg(filter.Cursor.LastID)
		conditions = append(conditions, "(created_at, id) < ("+ts+", "+id+")")
	}

	query := `SELECT ` + participantColumns + ` FROM participants`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT " + arg(limit+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanParticipantRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &service.ParticipantPage{
		Participants: items,
		NextCursor:   nextCursor,
		HasMore:      hasMore,
	}, nil
}

func (r *ParticipantRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status, availability string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE participants SET status = $1, availability = $2, updated_at = $3 WHERE id = $4`,
		string(status), availability, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrParticipantNotFound
	}
	return nil
}

func (r *ParticipantRepository) UpdateEmbedding(ctx context.Context, id int64, embedding []float32) error {
	if len(embedding) != domain.EmbeddingDimensions {
		return fmt.Errorf("embedding has %d dimensions, expected %d", len(embedding), domain.EmbeddingDimensions)
	}
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE participants SET embedding = $1, updated_at = $2 WHERE id = $3`,
		pgvector.NewVector(embedding), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrParticipantNotFound
	}
	return nil
}

func (r *ParticipantRepository) ListIDsMissingEmbedding(ctx context.Context) ([]int64, error) {
	return r.queryIDs(ctx, `SELECT id FROM participants WHERE embedding IS NULL ORDER BY id`)
}

func (r *ParticipantRepository) ListIDs(ctx context.Context) ([]int64, error) {
	return r.queryIDs(ctx, `SELECT id FROM participants ORDER BY id`)
}

func (r *ParticipantRepository) queryIDs(ctx context.Context, query string) ([]int64, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Skills returns the distinct trimmed primary skills, sorted.
func (r *ParticipantRepository) Skills(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT TRIM(skill) AS skill
		 FROM participants, unnest(skills) AS skill
		 WHERE TRIM(skill) <> ''
		 ORDER BY skill`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	skills := make([]string, 0)
	for rows.Next() {
		var skill string
		if err := rows.Scan(&skill); err != nil {
			return nil, err
		}
		skills = append(skills, skill)
	}
	return skills, rows.Err()
}

func (r *ParticipantRepository) Stats(ctx context.Context) (*service.DirectoryStats, error) {
	stats := &service.DirectoryStats{
		StatusCounts: map[domain.Status]int{},
		TopSkills:    []service.SkillCount{},
	}

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(embedding),
		        COUNT(*) FILTER (WHERE has_startup)
		 FROM participants`,
	).Scan(&stats.TotalParticipants, &stats.WithEmbeddings, &stats.WithStartups)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM participants GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count statuses: %w", err)
	}
	for rows.Next() {
		var raw string
		var count int
		if err := rows.Scan(&raw, &count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.StatusCounts[domain.ParseStatus(raw)] += count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.Query(ctx,
		`SELECT TRIM(skill) AS skill, COUNT(*) AS n
		 FROM participants, unnest(skills) AS skill
		 WHERE TRIM(skill) <> ''
		 GROUP BY TRIM(skill)
		 ORDER BY n DESC, skill ASC
		 LIMIT $1`, topSkillsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank skills: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sc service.SkillCount
		if err := rows.Scan(&sc.Skill, &sc.Count); err != nil {
			return nil, err
		}
		stats.TopSkills = append(stats.TopSkills, sc)
	}
	return stats, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
