package record

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kfalck/ghostfill-cli/api/schemas"
)

func sampleGeneration() schemas.Generation {
	return schemas.Generation{
		ID:                  "gen-123",
		URL:                 "https://example.com/signup",
		CreatedAt:           time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		ScreenshotBefore:    []byte{0x89, 0x50},
		ScreenshotAfter:     []byte{0x89, 0x51},
		ResourceDescription: "A rebel pilot persona",
		Fields: []schemas.GeneratedField{
			{Label: "Email", Type: "email", Value: "luke.skywalker@rebelalliance.com", Status: schemas.StatusDone},
			{Label: "Avatar", Type: "file", Value: "", Status: schemas.StatusSkipped},
			{Label: "Country", Type: "select", Value: "Tatooine", Status: schemas.StatusError},
		},
	}
}

func TestSaveLoad_RoundTripPreservesFieldOutcomes(t *testing.T) {
	saved := make(map[string][]schemas.Generation)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		base := r.URL.Query().Get("baseUrl")
		switch r.Method {
		case http.MethodPost:
			var gen schemas.Generation
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gen))
			saved[base] = append([]schemas.Generation{gen}, saved[base]...)
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			gens, ok := saved[base]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			require.NoError(t, json.NewEncoder(w).Encode(gens))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zaptest.NewLogger(t))
	ctx := context.Background()
	base := "https://example.com"
	original := sampleGeneration()

	require.NoError(t, client.Save(ctx, base, original))

	loaded, err := client.Load(ctx, base)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, original.ID, got.ID)
	assert.Equal(t, original.ScreenshotBefore, got.ScreenshotBefore)
	require.Len(t, got.Fields, len(original.Fields))
	for i, f := range original.Fields {
		assert.Equal(t, f.Status, got.Fields[i].Status, "field %d status", i)
		assert.Equal(t, f.Value, got.Fields[i].Value, "field %d value", i)
	}
}

func TestLoad_NotFoundYieldsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zaptest.NewLogger(t))
	got, err := client.Load(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSave_ServerErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "store unavailable", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zaptest.NewLogger(t))
	err := client.Save(context.Background(), "https://example.com", sampleGeneration())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
