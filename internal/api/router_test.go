package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmg/memehub/internal/config"
	"github.com/cmg/memehub/internal/domain"
	"github.com/cmg/memehub/internal/logger"
	"github.com/cmg/memehub/internal/repository"
	"github.com/cmg/memehub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	data []byte
	err  error
}

func (f *stubFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

type stubExtractor struct {
	fragments []string
}

func (f *stubExtractor) ExtractText(_ context.Context, _ []byte, _ string) ([]string, error) {
	return f.fragments, nil
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

func newTestRouter(t *testing.T, fetcher service.ImageFetcher, extractor *stubExtractor) (*gin.Engine, *repository.MemeRepository) {
	t.Helper()

	dbCfg := &config.DatabaseConfig{
		Driver:          "sqlite",
		Path:            filepath.Join(t.TempDir(), "memes.db"),
		MaxIdleConns:    2,
		MaxOpenConns:    2,
		ConnMaxLifetime: time.Minute,
		AutoMigrate:     true,
	}
	db, err := repository.Open(dbCfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close(db) })

	repo := repository.NewMemeRepository(db)
	log := logger.GetDefault()

	ingestService := service.NewIngestService(repo, fetcher, extractor, log, &service.IngestConfig{
		DefaultLanguage: "de",
	})
	memeService := service.NewMemeService(repo, log)

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Server.CORS.AllowAllOrigins = true

	return SetupRouter(ingestService, memeService, cfg, log), repo
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{}, &stubExtractor{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCreateMemeMissingInputEnvelope(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{}, &stubExtractor{})

	// Domain errors still travel with HTTP 200
	w, env := doJSON(t, router, http.MethodPost, "/api/meme/", map[string]string{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Either the url or image must be provided", env.Error)
}

func TestCreateAndGetMeme(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{}, &stubExtractor{})

	raw := []byte("png bytes")
	_, env := doJSON(t, router, http.MethodPost, "/api/meme/", map[string]string{
		"image":   base64.StdEncoding.EncodeToString(raw),
		"caption": "it works",
	})
	require.Equal(t, "success", env.Status)
	assert.Nil(t, env.Data)

	w, env := doJSON(t, router, http.MethodGet, "/api/meme/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "success", env.Status)

	var m domain.Meme
	require.NoError(t, json.Unmarshal(env.Data, &m))
	assert.Equal(t, uint(1), m.ID)
	assert.Equal(t, "it works", m.Caption)
	assert.Equal(t, 0, m.Upvotes)
	assert.Empty(t, m.URL)

	decoded, err := base64.StdEncoding.DecodeString(m.Image)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func TestCreateMemeOCRCaption(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{}, &stubExtractor{fragments: []string{"ONE", "TWO"}})

	_, env := doJSON(t, router, http.MethodPost, "/api/meme/", map[string]string{
		"image": base64.StdEncoding.EncodeToString([]byte("img")),
	})
	require.Equal(t, "success", env.Status)

	_, env = doJSON(t, router, http.MethodGet, "/api/meme/1", nil)
	var m domain.Meme
	require.NoError(t, json.Unmarshal(env.Data, &m))
	assert.Equal(t, "ONE TWO", m.Caption)
}

func TestCreateMemeOCRFailureEnvelope(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{}, &stubExtractor{fragments: nil})

	_, env := doJSON(t, router, http.MethodPost, "/api/meme/", map[string]string{
		"image": base64.StdEncoding.EncodeToString([]byte("blank")),
	})
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Failed to extract text from image. Make sure the provided image is not too large. Please choose another image or provide a caption.", env.Error)
}

func TestCreateMemeFetchFailureEnvelope(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{err: fmt.Errorf("unexpected status 404")}, &stubExtractor{})

	_, env := doJSON(t, router, http.MethodPost, "/api/meme/", map[string]string{
		"url": "http://example.com/gone.png",
	})
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Failed to fetch URL content for http://example.com/gone.png", env.Error)
}

func TestCreateMemeInvalidBase64Envelope(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{}, &stubExtractor{})

	_, env := doJSON(t, router, http.MethodPost, "/api/meme/", map[string]string{
		"image":   "!!!not base64!!!",
		"caption": "x",
	})
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Invalid base64 image", env.Error)
}

func TestGetMemeNotFound(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{}, &stubExtractor{})

	w, env := doJSON(t, router, http.MethodGet, "/api/meme/999", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Meme not found", env.Error)
}

func TestGetMemeNonNumericID(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{}, &stubExtractor{})

	_, env := doJSON(t, router, http.MethodGet, "/api/meme/abc", nil)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Meme not found", env.Error)
}

func seedViaAPI(t *testing.T, router *gin.Engine, caption string) {
	t.Helper()
	_, env := doJSON(t, router, http.MethodPost, "/api/meme/", map[string]string{
		"image":   base64.StdEncoding.EncodeToString([]byte("img-" + caption)),
		"caption": caption,
	})
	require.Equal(t, "success", env.Status)
}

func TestVoteFlow(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{}, &stubExtractor{})
	seedViaAPI(t, router, "votable")

	_, env := doJSON(t, router, http.MethodPost, "/api/meme/1/vote/", map[string]string{"type": "upvote"})
	assert.Equal(t, "success", env.Status)

	_, env = doJSON(t, router, http.MethodGet, "/api/meme/1", nil)
	var m domain.Meme
	require.NoError(t, json.Unmarshal(env.Data, &m))
	assert.Equal(t, 1, m.Upvotes)

	// Two downvotes: the second hits the floor but still succeeds
	for i := 0; i < 2; i++ {
		_, env = doJSON(t, router, http.MethodPost, "/api/meme/1/vote/", map[string]string{"type": "downvote"})
		assert.Equal(t, "success", env.Status)
	}

	_, env = doJSON(t, router, http.MethodGet, "/api/meme/1", nil)
	require.NoError(t, json.Unmarshal(env.Data, &m))
	assert.Equal(t, 0, m.Upvotes)
}

func TestVoteInvalidType(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{}, &stubExtractor{})
	seedViaAPI(t, router, "votable")

	_, env := doJSON(t, router, http.MethodPost, "/api/meme/1/vote/", map[string]string{"type": "sideways"})
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Invalid vote type", env.Error)
}

func TestVoteMemeNotFound(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{}, &stubExtractor{})

	_, env := doJSON(t, router, http.MethodPost, "/api/meme/42/vote/", map[string]string{"type": "upvote"})
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Meme not found", env.Error)
}

func TestTopMemes(t *testing.T) {
	router, repo := newTestRouter(t, &stubFetcher{}, &stubExtractor{})
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		seedViaAPI(t, router, fmt.Sprintf("meme-%d", i))
	}
	// Give meme i exactly i upvotes
	for i := 1; i <= 12; i++ {
		for v := 0; v < i-1; v++ {
			found, err := repo.Upvote(ctx, uint(i))
			require.NoError(t, err)
			require.True(t, found)
		}
	}

	_, env := doJSON(t, router, http.MethodGet, "/api/meme/top/", nil)
	require.Equal(t, "success", env.Status)

	var memes []domain.Meme
	require.NoError(t, json.Unmarshal(env.Data, &memes))
	require.Len(t, memes, 10)

	assert.Equal(t, 11, memes[0].Upvotes)
	for i := 1; i < len(memes); i++ {
		assert.GreaterOrEqual(t, memes[i-1].Upvotes, memes[i].Upvotes)
	}
}

func TestTopMemesEmptyStore(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{}, &stubExtractor{})

	w, env := doJSON(t, router, http.MethodGet, "/api/meme/top/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", env.Status)
	// Empty store is success with an empty list, not an error
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestRandomMeme(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{}, &stubExtractor{})
	seedViaAPI(t, router, "only one")

	_, env := doJSON(t, router, http.MethodGet, "/api/meme/random/", nil)
	require.Equal(t, "success", env.Status)

	var m domain.Meme
	require.NoError(t, json.Unmarshal(env.Data, &m))
	assert.Equal(t, "only one", m.Caption)
}

func TestRandomMemeEmptyStore(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{}, &stubExtractor{})

	_, env := doJSON(t, router, http.MethodGet, "/api/meme/random/", nil)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Error fetching meme", env.Error)
}

func TestAdminListAndReset(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{}, &stubExtractor{})
	seedViaAPI(t, router, "a")
	seedViaAPI(t, router, "b")

	_, env := doJSON(t, router, http.MethodGet, "/api/admin/memes/", nil)
	require.Equal(t, "success", env.Status)
	var memes []domain.Meme
	require.NoError(t, json.Unmarshal(env.Data, &memes))
	assert.Len(t, memes, 2)

	_, env = doJSON(t, router, http.MethodPost, "/api/admin/reset/", nil)
	assert.Equal(t, "success", env.Status)

	_, env = doJSON(t, router, http.MethodGet, "/api/meme/1", nil)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Meme not found", env.Error)
}
