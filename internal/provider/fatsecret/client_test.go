package fatsecret

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, payload string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/connect/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse token form: %v", err)
		}
		if r.Form.Get("grant_type") != "client_credentials" {
			t.Errorf("unexpected grant type %q", r.Form.Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":86400}`))
	})
	mux.HandleFunc("/rest/server.api", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("method") != "foods.search" {
			t.Errorf("unexpected method %q", r.URL.Query().Get("method"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, &tokenCalls
}

func newClient(ts *httptest.Server) *Client {
	return &Client{
		ClientID:     "id",
		ClientSecret: "secret",
		BaseURL:      ts.URL + "/rest/server.api",
		TokenURL:     ts.URL + "/connect/token",
		HTTPClient:   ts.Client(),
	}
}

func TestSearchNormalizesDescriptions(t *testing.T) {
	t.Parallel()
	ts, tokenCalls := newTestServer(t, `{"foods":{"food":[
  {"food_id":"1","food_name":"Apple","food_type":"Generic","food_description":"Per 100g - Calories: 52kcal | Fat: 0.17g | Carbs: 13.81g | Protein: 0.26g"},
  {"food_id":"2","food_name":"Protein Bar","brand_name":"Acme","food_type":"Brand","food_description":"Per 1 bar (50g) - Calories: 200kcal | Fat: 8.00g | Carbs: 20.00g | Protein: 15.00g"},
  {"food_id":"3","food_name":"Banana","food_type":"Generic","food_description":"Per 1 medium - Calories: 105kcal | Fat: 0.39g | Carbs: 26.95g | Protein: 1.29g"},
  {"food_id":"4","food_name":"Broken","food_description":"no numbers here"}
],"max_results":"10","total_results":"4","page_number":"0"}}`)

	c := newClient(ts)
	items, err := c.Search(context.Background(), "apple", 10)
	require.NoError(t, err)
	require.Len(t, items, 3)

	require.Equal(t, "Apple", items[0].Name)
	require.InDelta(t, 52, items[0].KcalPer100g, 1e-9)
	require.InDelta(t, 13.81, items[0].CarbsPer100g, 1e-9)
	require.Nil(t, items[0].GramsPerServing)
	require.Equal(t, "FATSECRET", string(items[0].Source))

	require.Equal(t, "Acme", items[1].Brand)
	require.InDelta(t, 400, items[1].KcalPer100g, 1e-9)
	require.InDelta(t, 30, items[1].ProteinPer100g, 1e-9)
	require.NotNil(t, items[1].GramsPerServing)
	require.InDelta(t, 50, *items[1].GramsPerServing, 1e-9)

	require.InDelta(t, 105, items[2].KcalPer100g, 1e-9)
	require.Equal(t, "1 medium", items[2].ServingLabel)

	_, err = c.Search(context.Background(), "apple", 10)
	require.NoError(t, err)
	require.Equal(t, int32(1), tokenCalls.Load(), "token should be cached")
}

func TestSearchHandlesSingleFoodObject(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, `{"foods":{"food":{"food_id":"9","food_name":"Skyr","food_description":"Per 100g - Calories: 63kcal | Fat: 0.20g | Carbs: 4.00g | Protein: 11.00g"}}}`)
	items, err := newClient(ts).Search(context.Background(), "skyr", 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Skyr", items[0].Name)
}

func TestSearchEmptyAndErrorPayloads(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, `{"foods":{"max_results":"10","total_results":"0"}}`)
	items, err := newClient(ts).Search(context.Background(), "zzz", 5)
	require.NoError(t, err)
	require.Empty(t, items)

	ts, _ = newTestServer(t, `{"error":{"code":21,"message":"Invalid IP address detected"}}`)
	_, err = newClient(ts).Search(context.Background(), "zzz", 5)
	require.ErrorContains(t, err, "Invalid IP")
}

func TestSearchRequiresCredentials(t *testing.T) {
	t.Parallel()
	_, err := (&Client{}).Search(context.Background(), "apple", 5)
	require.Error(t, err)
}

func TestParseDescription(t *testing.T) {
	t.Parallel()
	n, ok := ParseDescription("Per 250ml - Calories: 120kcal | Fat: 5.00g | Carbs: 12.00g | Protein: 8.00g")
	require.True(t, ok)
	require.Equal(t, "250ml", n.Basis)
	require.Zero(t, n.Grams)
	require.InDelta(t, 120, n.Kcal, 1e-9)

	n, ok = ParseDescription("per 2 slices (60 g) - calories: 150kcal | fat: 2g | carbs: 28g | protein: 5g")
	require.True(t, ok)
	require.InDelta(t, 60, n.Grams, 1e-9)
	require.True(t, strings.HasPrefix(n.Basis, "2 slices"))

	_, ok = ParseDescription("Calories: 52kcal")
	require.False(t, ok)
}
