package openfoodfacts

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

const (
	defaultBaseURL = "https://world.openfoodfacts.org"
	userAgent      = "spoon/1.0 (+https://github.com/echoshade800/spoon-calorie-v2-sub000)"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func (c *Client) Name() string { return "openfoodfacts" }

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (model.Food, error) {
	u := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL(), url.PathEscape(barcode))
	body, err := c.get(ctx, u)
	if err != nil {
		return model.Food{}, err
	}
	var parsed offResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return model.Food{}, fmt.Errorf("decode openfoodfacts response: %w", err)
	}
	if parsed.Status != 1 || strings.TrimSpace(parsed.Product.ProductName) == "" {
		return model.Food{}, fmt.Errorf("no openfoodfacts product found for barcode %q", barcode)
	}
	f := toFood(parsed.Product)
	if f.Barcode == "" {
		f.Barcode = barcode
	}
	return f, nil
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.Food, error) {
	if limit <= 0 {
		limit = 10
	}
	u := fmt.Sprintf("%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=%d",
		c.baseURL(),
		url.QueryEscape(strings.TrimSpace(query)),
		limit,
	)
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	var parsed offSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode openfoodfacts search response: %w", err)
	}
	out := make([]model.Food, 0, len(parsed.Products))
	for _, p := range parsed.Products {
		if strings.TrimSpace(p.ProductName) == "" {
			continue
		}
		out = append(out, toFood(p))
	}
	return out, nil
}

func (c *Client) baseURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return defaultBaseURL
	}
	return base
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create openfoodfacts request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute openfoodfacts request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openfoodfacts response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openfoodfacts request failed with status %d", resp.StatusCode)
	}
	return body, nil
}

func toFood(p offProduct) model.Food {
	f := model.Food{
		Name:           strings.TrimSpace(p.ProductName),
		Brand:          firstListItem(p.Brands),
		KcalPer100g:    per100g(p.Nutriments, "energy-kcal"),
		CarbsPer100g:   per100g(p.Nutriments, "carbohydrates"),
		ProteinPer100g: per100g(p.Nutriments, "proteins"),
		FatPer100g:     per100g(p.Nutriments, "fat"),
		FiberPer100g:   per100g(p.Nutriments, "fiber"),
		SugarPer100g:   per100g(p.Nutriments, "sugars"),
		// OFF reports sodium in grams.
		SodiumPer100g: per100g(p.Nutriments, "sodium") * 1000,
		ServingLabel:  strings.TrimSpace(p.ServingSize),
		Source:        model.FoodSourceOFF,
		Barcode:       strings.TrimSpace(p.Code),
		Category:      lastListItem(p.Categories),
	}
	if grams, ok := servingGrams(p); ok {
		f.GramsPerServing = &grams
	}
	if f.KcalPer100g == 0 {
		// Some products only carry kJ.
		f.KcalPer100g = per100g(p.Nutriments, "energy") / 4.184
	}
	return f
}

func per100g(n map[string]any, base string) float64 {
	if v, ok := parseFloatAny(n[base+"_100g"]); ok {
		return v
	}
	return 0
}

func parseFloatAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func servingGrams(p offProduct) (float64, bool) {
	qty, ok := parseFloatAny(p.ServingQuantity)
	if !ok || qty <= 0 {
		return 0, false
	}
	unit := strings.ToLower(strings.TrimSpace(p.ServingQuantityUnit))
	if unit == "" || unit == "g" || unit == "ml" {
		return qty, true
	}
	return 0, false
}

func firstListItem(s string) string {
	parts := strings.Split(s, ",")
	return strings.TrimSpace(parts[0])
}

func lastListItem(s string) string {
	parts := strings.Split(s, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}

type offResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

type offProduct struct {
	Code                string         `json:"code"`
	ProductName         string         `json:"product_name"`
	Brands              string         `json:"brands"`
	Categories          string         `json:"categories"`
	ServingSize         string         `json:"serving_size"`
	ServingQuantity     any            `json:"serving_quantity"`
	ServingQuantityUnit string         `json:"serving_quantity_unit"`
	Nutriments          map[string]any `json:"nutriments"`
}

type offSearchResponse struct {
	Products []offProduct `json:"products"`
}
