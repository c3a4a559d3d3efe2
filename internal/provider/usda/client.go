package usda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
)

const defaultBaseURL = "https://api.nal.usda.gov"

var searchDataTypes = []string{"Foundation", "SR Legacy", "Branded"}

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func (c *Client) Name() string { return "usda" }

// Search queries FoodData Central. Search hits carry nutrients per 100 g
// for every data type, so no rescaling is needed.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.Food, error) {
	if limit <= 0 {
		limit = 10
	}
	parsed, err := c.search(ctx, map[string]any{
		"query":    strings.TrimSpace(query),
		"dataType": searchDataTypes,
		"pageSize": limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.Food, 0, len(parsed.Foods))
	for _, f := range parsed.Foods {
		if strings.TrimSpace(f.Description) == "" {
			continue
		}
		out = append(out, toFood(f))
	}
	return out, nil
}

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (model.Food, error) {
	parsed, err := c.search(ctx, map[string]any{
		"query":    barcode,
		"dataType": []string{"Branded"},
		"pageSize": 20,
	})
	if err != nil {
		return model.Food{}, err
	}
	food, ok := selectBarcodeMatch(parsed.Foods, barcode)
	if !ok {
		return model.Food{}, fmt.Errorf("no USDA branded food found for barcode %q", barcode)
	}
	out := toFood(food)
	out.Barcode = barcode
	return out, nil
}

func (c *Client) search(ctx context.Context, reqBody map[string]any) (searchResponse, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return searchResponse{}, fmt.Errorf("missing USDA API key")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return searchResponse{}, fmt.Errorf("marshal USDA search payload: %w", err)
	}

	u := fmt.Sprintf("%s/fdc/v1/foods/search?api_key=%s", baseURL, url.QueryEscape(c.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return searchResponse{}, fmt.Errorf("create USDA request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return searchResponse{}, fmt.Errorf("execute USDA request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return searchResponse{}, fmt.Errorf("read USDA response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return searchResponse{}, fmt.Errorf("USDA request failed with status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return searchResponse{}, fmt.Errorf("decode USDA response: %w", err)
	}
	return parsed, nil
}

func toFood(f usdaFood) model.Food {
	out := model.Food{
		Name:     strings.TrimSpace(f.Description),
		Brand:    strings.TrimSpace(firstNonEmpty(f.BrandName, f.BrandOwner)),
		Source:   model.FoodSourceUSDA,
		Barcode:  strings.TrimSpace(f.GTINUPC),
		Category: strings.TrimSpace(firstNonEmpty(f.FoodCategory, f.BrandedFoodCategory)),
	}
	unit := strings.ToLower(strings.TrimSpace(f.ServingSizeUnit))
	if f.ServingSize > 0 && (unit == "g" || unit == "grm" || unit == "ml" || unit == "mlt") {
		grams := f.ServingSize
		out.GramsPerServing = &grams
		out.ServingLabel = strings.TrimSpace(firstNonEmpty(f.HouseholdServing, fmt.Sprintf("%g g", grams)))
	}
	for _, n := range f.FoodNutrients {
		name := strings.ToLower(strings.TrimSpace(n.NutrientName))
		switch {
		case strings.HasPrefix(name, "energy"):
			// Energy is reported twice, once in kJ.
			if strings.EqualFold(n.UnitName, "KCAL") || n.UnitName == "" {
				if out.KcalPer100g == 0 {
					out.KcalPer100g = n.Value
				}
			}
		case name == "protein":
			out.ProteinPer100g = n.Value
		case name == "carbohydrate, by difference":
			out.CarbsPer100g = n.Value
		case name == "total lipid (fat)":
			out.FatPer100g = n.Value
		case name == "fiber, total dietary":
			out.FiberPer100g = n.Value
		case name == "sugars, total including nlea" || name == "sugars, total":
			out.SugarPer100g = n.Value
		case name == "sodium, na":
			out.SodiumPer100g = n.Value
		}
	}
	return out
}

func selectBarcodeMatch(foods []usdaFood, barcode string) (usdaFood, bool) {
	for _, f := range foods {
		if strings.TrimSpace(f.GTINUPC) == barcode {
			return f, true
		}
	}
	if len(foods) > 0 {
		return foods[0], true
	}
	return usdaFood{}, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type searchResponse struct {
	Foods []usdaFood `json:"foods"`
}

type usdaFood struct {
	FDCID               int64          `json:"fdcId"`
	Description         string         `json:"description"`
	BrandOwner          string         `json:"brandOwner"`
	BrandName           string         `json:"brandName"`
	GTINUPC             string         `json:"gtinUpc"`
	FoodCategory        string         `json:"foodCategory"`
	BrandedFoodCategory string         `json:"brandedFoodCategory"`
	ServingSize         float64        `json:"servingSize"`
	ServingSizeUnit     string         `json:"servingSizeUnit"`
	HouseholdServing    string         `json:"householdServingFullText"`
	FoodNutrients       []usdaNutrient `json:"foodNutrients"`
}

type usdaNutrient struct {
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}
