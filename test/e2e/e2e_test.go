//go:build e2e

package e2e

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloo-solutions/communityos/internal/api/handlers"
	"github.com/cloo-solutions/communityos/internal/dataset"
	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/cloo-solutions/communityos/internal/jobs"
	"github.com/cloo-solutions/communityos/internal/repository"
	"github.com/cloo-solutions/communityos/internal/service"
	"github.com/cloo-solutions/communityos/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProfiles() []*domain.Profile {
	return []*domain.Profile{
		{
			ID:        1,
			Name:      "Ada",
			Email:     "ada@example.com",
			Telegram:  "@ada",
			Bio:       "Rust and math person",
			Skills:    []string{"Rust", "Math"},
			Interests: []string{"climbing"},
			Status:    "green",
		},
		{
			ID:        2,
			Name:      "Grace",
			Email:     "grace@example.com",
			Telegram:  "@grace",
			Bio:       "COBOL veteran learning Rust",
			Skills:    []string{"COBOL", "Rust"},
			Interests: []string{"climbing"},
			Status:    "yellow",
		},
		{
			ID:        3,
			Name:      "Linus",
			Email:     "linus@example.com",
			Telegram:  "@linus",
			Bio:       "kernel hacker",
			Skills:    []string{"C", "kernel"},
			Interests: []string{"sailing"},
			Status:    "red",
		},
	}
}

func TestE2E_CommunityFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.BuildBinaries()

	workDir := t.TempDir()
	seedPath := filepath.Join(workDir, "participants.json")

	var buf bytes.Buffer
	require.NoError(t, dataset.Encode(&buf, seedProfiles()))
	require.NoError(t, os.WriteFile(seedPath, buf.Bytes(), 0o644))
	require.NoError(t, env.S3Client.PutObject(env.Ctx, "participants.json", buf.Bytes(), "application/json"))

	t.Run("validate dataset", func(t *testing.T) {
		out, err := env.RunDaemon(workDir, "dataset", "validate", seedPath)
		require.NoError(t, err, out)
		assert.Contains(t, out, "3")
	})

	t.Run("seed from s3", func(t *testing.T) {
		out, err := env.RunDaemon(workDir, "seed", "s3://"+testBucket+"/participants.json")
		require.NoError(t, err, out)

		var pending int
		err = env.Pool.QueryRow(env.Ctx, "SELECT COUNT(*) FROM embedding_jobs WHERE status = 'pending'").Scan(&pending)
		require.NoError(t, err)
		assert.Equal(t, 3, pending)
	})

	t.Run("process embedding jobs", func(t *testing.T) {
		participants := repository.NewParticipantRepository(env.Pool)
		worker, err := jobs.NewEmbeddingWorker(
			repository.NewEmbeddingJobRepository(env.Pool),
			service.NewEmbeddingService(env.Embedder, participants),
			jobs.WithPoolSize(2),
		)
		require.NoError(t, err)
		defer worker.Release()

		require.NoError(t, worker.ProcessJobs(env.Ctx))

		var completed int
		err = env.Pool.QueryRow(env.Ctx, "SELECT COUNT(*) FROM embedding_jobs WHERE status = 'completed'").Scan(&completed)
		require.NoError(t, err)
		assert.Equal(t, 3, completed)
	})

	t.Run("health", func(t *testing.T) {
		resp := env.Get("/health")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("list participants", func(t *testing.T) {
		var list handlers.ListParticipantsResponse
		env.Get("/participants?limit=10").Decode(t, &list)

		require.Len(t, list.Participants, 3)
		for _, p := range list.Participants {
			assert.True(t, p.HasEmbedding, p.Name)
		}
	})

	t.Run("search", func(t *testing.T) {
		var out handlers.SearchResponse
		env.Post("/search", map[string]any{
			"query":          "rust",
			"matchThreshold": 0.5,
		}).Decode(t, &out)

		names := make([]string, len(out.Matches))
		for i, m := range out.Matches {
			names[i] = m.Participant.Name
		}
		assert.ElementsMatch(t, []string{"Ada", "Grace"}, names)
		assert.NotEmpty(t, out.Explanation)
		assert.Equal(t, "rust", out.Metadata.Query)
	})

	t.Run("search rejects empty query", func(t *testing.T) {
		resp := env.Post("/search", map[string]any{"query": "  "})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, domain.ErrCodeInvalidQuery, resp.Code)
	})

	t.Run("roulette", func(t *testing.T) {
		var matches []handlers.MatchResponse
		env.Post("/matches", map[string]any{"sourceProfileId": 1}).Decode(t, &matches)

		require.NotEmpty(t, matches)
		assert.Equal(t, "Grace", matches[0].Participant.Name)
		assert.Contains(t, matches[0].SharedSkills, "Rust")
		for _, m := range matches {
			assert.NotEqual(t, "Linus", m.Participant.Name, "red participants are excluded by default")
		}
	})

	t.Run("update status", func(t *testing.T) {
		var p handlers.ParticipantResponse
		env.Put("/participants/3/status", map[string]any{"status": "GREEN"}).Decode(t, &p)
		assert.Equal(t, "green", p.Status)

		resp := env.Get("/participants/404")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("intro falls back without a writer", func(t *testing.T) {
		var intro handlers.IntroResponse
		env.Post("/intro", map[string]any{"sourceId": 1, "targetId": 2}).Decode(t, &intro)

		assert.True(t, intro.Fallback)
		assert.Contains(t, intro.Message, "Ada")
	})

	t.Run("client search", func(t *testing.T) {
		out, err := env.RunClient("search", "rust", "--threshold", "0.5")
		require.NoError(t, err, out)
		assert.Contains(t, out, "Ada")
		assert.NotContains(t, out, "Linus")
	})

	t.Run("backup to s3", func(t *testing.T) {
		out, err := env.RunDaemon(workDir, "dataset", "backup", seedPath)
		require.NoError(t, err, out)

		var key string
		for _, field := range strings.Fields(out) {
			if strings.Contains(field, storage.BackupPrefix) {
				key = strings.TrimPrefix(field, "s3://"+testBucket+"/")
			}
		}
		require.NotEmpty(t, key, out)

		meta, err := env.S3Client.HeadObject(env.Ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(buf.Len()), meta.ContentLength)
	})
}
