package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText(t *testing.T) {
	image := []byte("fake image bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/ocr", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req ocrRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, base64.StdEncoding.EncodeToString(image), req.Image)
		assert.Equal(t, "de", req.Language)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{"text": "TOP TEXT", "confidence": 0.98},
				{"text": "BOTTOM TEXT", "confidence": 0.91},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(&Config{Endpoint: srv.URL, APIKey: "secret", Timeout: 5 * time.Second})

	fragments, err := client.ExtractText(context.Background(), image, "de")
	require.NoError(t, err)
	assert.Equal(t, []string{"TOP TEXT", "BOTTOM TEXT"}, fragments)
}

func TestExtractTextNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"results": []interface{}{}})
	}))
	defer srv.Close()

	client := NewClient(&Config{Endpoint: srv.URL, Timeout: 5 * time.Second})

	// No recognizable text is a successful call with zero fragments
	fragments, err := client.ExtractText(context.Background(), []byte("blank"), "")
	require.NoError(t, err)
	assert.Empty(t, fragments)
}

func TestExtractTextSkipsEmptyFragments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{"text": "", "confidence": 0.1},
				{"text": "KEPT", "confidence": 0.9},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(&Config{Endpoint: srv.URL, Timeout: 5 * time.Second})

	fragments, err := client.ExtractText(context.Background(), []byte("img"), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"KEPT"}, fragments)
}

func TestExtractTextHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "recognizer crashed"})
	}))
	defer srv.Close()

	client := NewClient(&Config{Endpoint: srv.URL, Timeout: 5 * time.Second})

	_, err := client.ExtractText(context.Background(), []byte("img"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestExtractTextServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "unsupported language"})
	}))
	defer srv.Close()

	client := NewClient(&Config{Endpoint: srv.URL, Timeout: 5 * time.Second})

	_, err := client.ExtractText(context.Background(), []byte("img"), "xx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported language")
}
