package profileapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.Header.Get("X-API-Key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/ingredients" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		var resp profilesResponse
		for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
			if id == "unknown" {
				continue
			}
			resp.Ingredients = append(resp.Ingredients, common.IngredientProfile{ID: id, Name: id, Calories: 100})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetProfiles(t *testing.T) {
	var calls int32
	srv := newTestServer(t, &calls)
	client := NewClient(&config.ProfileAPIConfig{BaseURL: srv.URL + "/", Timeout: time.Second, APIKey: "secret"})

	got, err := client.GetProfiles(context.Background(), []string{"rice", "unknown", "egg"})
	require.NoError(t, err)

	assert.Len(t, got, 2)
	assert.Equal(t, 100.0, got["rice"].Calories)
	_, ok := got["unknown"]
	assert.False(t, ok)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetProfilesBatches(t *testing.T) {
	var calls int32
	srv := newTestServer(t, &calls)
	client := NewClient(&config.ProfileAPIConfig{BaseURL: srv.URL, Timeout: time.Second, APIKey: "secret"})

	ids := make([]string, maxBatch+5)
	for i := range ids {
		ids[i] = fmt.Sprintf("ing-%d", i)
	}
	got, err := client.GetProfiles(context.Background(), ids)
	require.NoError(t, err)
	assert.Len(t, got, len(ids))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetProfilesErrorStatus(t *testing.T) {
	var calls int32
	srv := newTestServer(t, &calls)
	client := NewClient(&config.ProfileAPIConfig{BaseURL: srv.URL, Timeout: time.Second})

	_, err := client.GetProfiles(context.Background(), []string{"rice"})
	assert.Error(t, err)
}

func TestGetProfilesEmpty(t *testing.T) {
	client := NewClient(&config.ProfileAPIConfig{BaseURL: "http://127.0.0.1:0", Timeout: time.Second})
	got, err := client.GetProfiles(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
