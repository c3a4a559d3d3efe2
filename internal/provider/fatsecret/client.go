package fatsecret

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
)

const (
	defaultBaseURL  = "https://platform.fatsecret.com/rest/server.api"
	defaultTokenURL = "https://oauth.fatsecret.com/connect/token"
)

type Client struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
	HTTPClient   *http.Client

	once   sync.Once
	source oauth2.TokenSource
}

func (c *Client) Name() string { return "fatsecret" }

func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.Food, error) {
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return nil, fmt.Errorf("missing FatSecret client credentials")
	}
	if limit <= 0 {
		limit = 10
	}
	q := url.Values{
		"method":            {"foods.search"},
		"search_expression": {strings.TrimSpace(query)},
		"max_results":       {strconv.Itoa(limit)},
		"format":            {"json"},
	}
	body, err := c.get(ctx, q)
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode fatsecret response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("fatsecret error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	items, err := parsed.Foods.items()
	if err != nil {
		return nil, err
	}

	out := make([]model.Food, 0, len(items))
	for _, it := range items {
		f, ok := toFood(it)
		if !ok {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, q url.Values) ([]byte, error) {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create fatsecret request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client(ctx).Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute fatsecret request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read fatsecret response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fatsecret request failed with status %d", resp.StatusCode)
	}
	return body, nil
}

// client wraps the base HTTP client with a cached client-credentials token
// source. The token is fetched lazily and refreshed on expiry.
func (c *Client) client(ctx context.Context) *http.Client {
	base := c.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: 12 * time.Second}
	}
	c.once.Do(func() {
		tokenURL := strings.TrimSpace(c.TokenURL)
		if tokenURL == "" {
			tokenURL = defaultTokenURL
		}
		cfg := clientcredentials.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{"basic"},
		}
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		c.source = cfg.TokenSource(tokenCtx)
	})
	return &http.Client{
		Timeout: base.Timeout,
		Transport: &oauth2.Transport{
			Source: c.source,
			Base:   base.Transport,
		},
	}
}

// descriptionPattern matches FatSecret's summary line, for example
// "Per 100g - Calories: 52kcal | Fat: 0.17g | Carbs: 13.81g | Protein: 0.26g".
var descriptionPattern = regexp.MustCompile(
	`(?i)^per\s+(.+?)\s+-\s+calories:\s*([\d.]+)\s*kcal\s*\|\s*fat:\s*([\d.]+)\s*g\s*\|\s*carbs:\s*([\d.]+)\s*g\s*\|\s*protein:\s*([\d.]+)\s*g`,
)

var gramsPattern = regexp.MustCompile(`(?i)([\d.]+)\s*g\b`)

type Nutrition struct {
	Basis   string
	Grams   float64
	Kcal    float64
	Fat     float64
	Carbs   float64
	Protein float64
}

// ParseDescription reads a FatSecret food_description. Grams is zero when the
// basis is not expressed in grams (for example "Per 1 medium").
func ParseDescription(desc string) (Nutrition, bool) {
	m := descriptionPattern.FindStringSubmatch(strings.TrimSpace(desc))
	if m == nil {
		return Nutrition{}, false
	}
	n := Nutrition{Basis: strings.TrimSpace(m[1])}
	vals := make([]float64, 4)
	for i := range vals {
		v, err := strconv.ParseFloat(m[i+2], 64)
		if err != nil {
			return Nutrition{}, false
		}
		vals[i] = v
	}
	n.Kcal, n.Fat, n.Carbs, n.Protein = vals[0], vals[1], vals[2], vals[3]
	if g := gramsPattern.FindStringSubmatch(n.Basis); g != nil {
		if v, err := strconv.ParseFloat(g[1], 64); err == nil && v > 0 {
			n.Grams = v
		}
	}
	return n, true
}

// toFood normalizes to per 100 g. A basis without grams is kept as a nominal
// 100 g serving labelled with the original basis.
func toFood(it foodItem) (model.Food, bool) {
	name := strings.TrimSpace(it.FoodName)
	if name == "" {
		return model.Food{}, false
	}
	n, ok := ParseDescription(it.FoodDescription)
	if !ok {
		return model.Food{}, false
	}
	per100 := func(v float64) float64 { return v }
	f := model.Food{
		Name:   name,
		Brand:  strings.TrimSpace(it.BrandName),
		Source: model.FoodSourceFatSecret,
	}
	if n.Grams > 0 {
		per100 = func(v float64) float64 { return v * 100 / n.Grams }
		if !strings.EqualFold(n.Basis, "100g") {
			grams := n.Grams
			f.GramsPerServing = &grams
			f.ServingLabel = n.Basis
		}
	} else {
		f.ServingLabel = n.Basis
	}
	f.KcalPer100g = per100(n.Kcal)
	f.FatPer100g = per100(n.Fat)
	f.CarbsPer100g = per100(n.Carbs)
	f.ProteinPer100g = per100(n.Protein)
	return f, true
}

type searchResponse struct {
	Foods foodsEnvelope `json:"foods"`
	Error *apiError     `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// FatSecret returns "food" as an object when there is exactly one hit.
type foodsEnvelope struct {
	Food json.RawMessage `json:"food"`
}

func (e foodsEnvelope) items() ([]foodItem, error) {
	raw := bytes.TrimSpace(e.Food)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '{' {
		var one foodItem
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, fmt.Errorf("decode fatsecret food: %w", err)
		}
		return []foodItem{one}, nil
	}
	var many []foodItem
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("decode fatsecret foods: %w", err)
	}
	return many, nil
}

type foodItem struct {
	FoodID          string `json:"food_id"`
	FoodName        string `json:"food_name"`
	FoodType        string `json:"food_type"`
	BrandName       string `json:"brand_name"`
	FoodDescription string `json:"food_description"`
}
