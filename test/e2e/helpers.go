//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cloo-solutions/communityos/internal/api/handlers"
	"github.com/cloo-solutions/communityos/internal/repository"
	"github.com/cloo-solutions/communityos/internal/server"
	"github.com/cloo-solutions/communityos/internal/service"
	"github.com/cloo-solutions/communityos/internal/storage"
	"github.com/cloo-solutions/communityos/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const (
	testBucket    = "community-e2e"
	embeddingDims = 1536
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T         *testing.T
	Ctx       context.Context
	PostgresC *testutil.PostgresContainer
	RustFSC   *testutil.RustFSContainer
	Pool      *pgxpool.Pool
	Server    *httptest.Server
	S3Client  *storage.S3Client
	Embedder  *vocabularyEmbedder
	Logs      *test.Hook
	BinaryDir string

	HTTPClient *http.Client
}

// SetupE2EEnv starts Postgres and RustFS and serves the API in-process.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     testutil.RustFSAccessKey,
		SecretAccessKey: testutil.RustFSSecretKey,
		Bucket:          testBucket,
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	logger, hook := test.NewNullLogger()
	env := &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		RustFSC:    s3C,
		Pool:       pool,
		S3Client:   s3Client,
		Embedder:   newVocabularyEmbedder("rust", "cobol", "math", "kernel", "compilers", "climbing", "sailing"),
		Logs:       hook,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	env.Server = httptest.NewServer(env.newRouter(logger))

	return env
}

func (e *E2ETestEnv) newRouter(logger logrus.FieldLogger) http.Handler {
	participantRepo := repository.NewParticipantRepository(e.Pool)
	searchRepo := repository.NewParticipantSearchRepository(e.Pool, logger)

	searchSvc := service.NewSearchServiceWithConfig(e.Embedder, searchRepo, nil, service.SearchServiceConfig{
		EmbeddingModel: "vocabulary-test",
		Logger:         logger,
	})

	return server.NewRouter(server.RouterConfig{
		Logger:             logger,
		HealthHandler:      handlers.NewHealthHandler(e.Pool),
		SearchHandler:      handlers.NewSearchHandler(searchSvc),
		MatchHandler:       handlers.NewMatchHandler(service.NewMatchService(participantRepo)),
		ParticipantHandler: handlers.NewParticipantHandler(service.NewParticipantService(participantRepo)),
		IntroHandler:       handlers.NewIntroHandler(service.NewIntroService(participantRepo, nil, logger)),
	})
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.Server != nil {
		e.Server.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// BuildBinaries builds the community and communityd binaries
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "community-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	for _, name := range []string{"communityd", "community"} {
		cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, name), "./cmd/"+name)
		cmd.Dir = "../.."
		if out, err := cmd.CombinedOutput(); err != nil {
			e.T.Fatalf("failed to build %s: %v\n%s", name, err, out)
		}
	}
}

// RunDaemon runs communityd against the test containers.
func (e *E2ETestEnv) RunDaemon(workDir string, args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "communityd"), args...)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(),
		"COMMUNITY_DATABASE_URL="+e.PostgresC.ConnectionString(),
		"COMMUNITY_S3_ENDPOINT="+e.RustFSC.Endpoint(),
		"COMMUNITY_S3_ACCESS_KEY_ID="+testutil.RustFSAccessKey,
		"COMMUNITY_S3_SECRET_ACCESS_KEY="+testutil.RustFSSecretKey,
		"COMMUNITY_S3_BUCKET="+testBucket,
		"COMMUNITY_LOG_LEVEL=error",
		"COMMUNITY_OPENAI_API_KEY=",
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// RunClient runs the community CLI against the in-process server.
func (e *E2ETestEnv) RunClient(args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "community"), args...)
	cmd.Dir = e.T.TempDir()
	cmd.Env = append(os.Environ(), "COMMUNITY_API_URL="+e.Server.URL)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// APIResponse represents a standard API response
type APIResponse struct {
	StatusCode int
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error,omitempty"`
	Code       string          `json:"code,omitempty"`
}

func (e *E2ETestEnv) Get(path string) *APIResponse {
	return e.doRequest(http.MethodGet, path, nil)
}

func (e *E2ETestEnv) Post(path string, body interface{}) *APIResponse {
	return e.doRequest(http.MethodPost, path, body)
}

func (e *E2ETestEnv) Put(path string, body interface{}) *APIResponse {
	return e.doRequest(http.MethodPut, path, body)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}) *APIResponse {
	e.T.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			e.T.Fatalf("failed to marshal body: %v", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, e.Server.URL+path, reqBody)
	if err != nil {
		e.T.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		e.T.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		e.T.Fatalf("failed to read response: %v", err)
	}

	apiResp := &APIResponse{}
	if err := json.Unmarshal(respBody, apiResp); err != nil {
		e.T.Fatalf("%s %s: unexpected body %q", method, path, respBody)
	}
	apiResp.StatusCode = resp.StatusCode
	return apiResp
}

// Decode unmarshals the data envelope into v.
func (r *APIResponse) Decode(t *testing.T, v interface{}) {
	t.Helper()
	if r.StatusCode >= 400 {
		t.Fatalf("HTTP %d %s: %s", r.StatusCode, r.Code, r.Error)
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}

// vocabularyEmbedder maps text onto one dimension per known word plus a
// constant bias dimension, so similarity tracks shared vocabulary.
type vocabularyEmbedder struct {
	index map[string]int
}

func newVocabularyEmbedder(words ...string) *vocabularyEmbedder {
	index := make(map[string]int, len(words))
	for i, w := range words {
		index[w] = i + 1
	}
	return &vocabularyEmbedder{index: index}
}

func (v *vocabularyEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text")
	}

	vec := make([]float32, embeddingDims)
	vec[0] = 0.1
	for _, token := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		if i, ok := v.index[token]; ok {
			vec[i]++
		}
	}

	var norm float64
	for _, x := range vec {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}
