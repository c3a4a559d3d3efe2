package upcitemdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
)

const defaultBaseURL = "https://api.upcitemdb.com"

// UPCitemdb has no source of its own in the food table; its products are
// stored as Open Food Facts style branded foods.
const foodSource = model.FoodSourceOFF

type Client struct {
	BaseURL    string
	APIKey     string
	APIKeyType string
	HTTPClient *http.Client
}

func (c *Client) Name() string { return "upcitemdb" }

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (model.Food, error) {
	parsed, err := c.get(ctx, "lookup", url.Values{"upc": {barcode}})
	if err != nil {
		return model.Food{}, err
	}
	if strings.ToUpper(parsed.Code) != "OK" || len(parsed.Items) == 0 {
		return model.Food{}, fmt.Errorf("no upcitemdb product found for barcode %q", barcode)
	}
	f := toFood(parsed.Items[0])
	f.Barcode = barcode
	return f, nil
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.Food, error) {
	parsed, err := c.get(ctx, "search", url.Values{"s": {strings.TrimSpace(query)}, "match_mode": {"0"}, "type": {"product"}})
	if err != nil {
		return nil, err
	}
	if strings.ToUpper(parsed.Code) != "OK" {
		return nil, fmt.Errorf("upcitemdb search returned code %q", parsed.Code)
	}
	out := make([]model.Food, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if strings.TrimSpace(it.Title) == "" {
			continue
		}
		out = append(out, toFood(it))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values) (response, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	path := "/prod/trial/" + endpoint
	if strings.TrimSpace(c.APIKey) != "" {
		path = "/prod/v1/" + endpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path+"?"+q.Encode(), nil)
	if err != nil {
		return response{}, fmt.Errorf("create upcitemdb request: %w", err)
	}
	if strings.TrimSpace(c.APIKey) != "" {
		keyType := strings.TrimSpace(c.APIKeyType)
		if keyType == "" {
			keyType = "3scale"
		}
		req.Header.Set("key_type", keyType)
		req.Header.Set("user_key", strings.TrimSpace(c.APIKey))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("execute upcitemdb request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("read upcitemdb response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return response{}, fmt.Errorf("upcitemdb request failed with status %d", resp.StatusCode)
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return response{}, fmt.Errorf("decode upcitemdb response: %w", err)
	}
	return parsed, nil
}

// toFood rescales per-serving facts to per 100 g when the serving size is in
// grams. Other serving units are treated as a nominal 100 g serving.
func toFood(it item) model.Food {
	amount, unit := parseServing(it.Size)
	per100 := func(v float64) float64 { return v }
	f := model.Food{
		Name:     strings.TrimSpace(it.Title),
		Brand:    strings.TrimSpace(it.Brand),
		Source:   foodSource,
		Barcode:  strings.TrimSpace(firstNonEmpty(it.UPC, it.EAN)),
		Category: lastCategory(it.Category),
	}
	if amount > 0 && (unit == "g" || unit == "ml") {
		per100 = func(v float64) float64 { return v * 100 / amount }
		grams := amount
		f.GramsPerServing = &grams
		f.ServingLabel = strings.TrimSpace(it.Size)
	}
	f.KcalPer100g = per100(parseNutrient(it.NutritionFacts, "calories"))
	f.ProteinPer100g = per100(parseNutrient(it.NutritionFacts, "protein"))
	f.CarbsPer100g = per100(parseNutrient(it.NutritionFacts, "carbohydrate"))
	f.FatPer100g = per100(parseNutrient(it.NutritionFacts, "fat"))
	f.FiberPer100g = per100(parseNutrient(it.NutritionFacts, "fiber"))
	f.SugarPer100g = per100(parseNutrient(it.NutritionFacts, "sugar"))
	f.SodiumPer100g = per100(parseNutrient(it.NutritionFacts, "sodium"))
	return f
}

func parseServing(size string) (float64, string) {
	parts := strings.Fields(strings.TrimSpace(size))
	if len(parts) >= 2 {
		if f, err := strconv.ParseFloat(strings.Trim(parts[0], ","), 64); err == nil && f > 0 {
			return f, strings.ToLower(parts[1])
		}
	}
	return 0, ""
}

// parseNutrient matches a nutrition fact by key fragment. "Total Fat" must
// not pick up "Saturated Fat"; the shortest matching key wins.
func parseNutrient(n map[string]any, keyContains string) float64 {
	best := ""
	for k := range n {
		lower := strings.ToLower(k)
		if !strings.Contains(lower, keyContains) {
			continue
		}
		if strings.Contains(lower, "saturated") || strings.Contains(lower, "trans") || strings.Contains(lower, "from") {
			continue
		}
		if best == "" || len(k) < len(best) {
			best = k
		}
	}
	if best == "" {
		return 0
	}
	s := fmt.Sprintf("%v", n[best])
	var filtered strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			filtered.WriteRune(r)
		}
	}
	f, err := strconv.ParseFloat(filtered.String(), 64)
	if err != nil {
		return 0
	}
	return f
}

func lastCategory(s string) string {
	parts := strings.Split(s, ">")
	return strings.TrimSpace(parts[len(parts)-1])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type response struct {
	Code  string `json:"code"`
	Items []item `json:"items"`
}

type item struct {
	Title          string         `json:"title"`
	Brand          string         `json:"brand"`
	UPC            string         `json:"upc"`
	EAN            string         `json:"ean"`
	Category       string         `json:"category"`
	Size           string         `json:"size"`
	NutritionFacts map[string]any `json:"nutrition_facts"`
}
