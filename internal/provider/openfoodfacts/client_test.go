package openfoodfacts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLookupBarcodeParsesOpenFoodFactsResponse(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/api/v2/product/3017620422003.json") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("expected a user agent")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "status": 1,
  "product": {
    "code": "3017620422003",
    "product_name": "Hazelnut Spread",
    "brands": "Nutella, Ferrero",
    "categories": "Spreads, Sweet spreads, Hazelnut spreads",
    "serving_size": "15 g",
    "serving_quantity": "15",
    "nutriments": {
      "energy-kcal_100g": 539,
      "proteins_100g": 6.3,
      "carbohydrates_100g": 57.5,
      "fat_100g": 30.9,
      "sugars_100g": 56.3,
      "sodium_100g": 0.0428,
      "energy-kcal_serving": 80.9
    }
  }
}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	item, err := c.LookupBarcode(context.Background(), "3017620422003")
	if err != nil {
		t.Fatalf("lookup barcode: %v", err)
	}
	if item.Name != "Hazelnut Spread" || item.Brand != "Nutella" {
		t.Fatalf("unexpected identity: %+v", item)
	}
	if item.KcalPer100g != 539 || item.FatPer100g != 30.9 || item.ProteinPer100g != 6.3 {
		t.Fatalf("expected per-100g nutrients, got %+v", item)
	}
	if item.SodiumPer100g < 42.7 || item.SodiumPer100g > 42.9 {
		t.Fatalf("expected sodium converted to mg, got %v", item.SodiumPer100g)
	}
	if item.GramsPerServing == nil || *item.GramsPerServing != 15 {
		t.Fatalf("expected 15 g serving, got %v", item.GramsPerServing)
	}
	if item.Category != "Hazelnut spreads" || item.Source != "OFF" {
		t.Fatalf("unexpected category/source: %+v", item)
	}
}

func TestLookupBarcodeNotFound(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": 0, "status_verbose": "product not found"}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	if _, err := c.LookupBarcode(context.Background(), "00000000"); err == nil {
		t.Fatalf("expected missing product to fail")
	}
}

func TestSearchSkipsUnnamedProducts(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search_terms"); got != "greek yogurt" {
			t.Errorf("unexpected search terms %q", got)
		}
		if got := r.URL.Query().Get("page_size"); got != "5" {
			t.Errorf("unexpected page size %q", got)
		}
		_, _ = w.Write([]byte(`{"products": [
  {"product_name": "Greek Yogurt", "brands": "Fage", "nutriments": {"energy-kcal_100g": 97, "proteins_100g": 9}},
  {"product_name": "", "nutriments": {}},
  {"product_name": "Greek Style Yogurt", "nutriments": {"energy_100g": 418.4}}
]}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	items, err := c.Search(context.Background(), " greek yogurt ", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 named products, got %d", len(items))
	}
	if items[0].KcalPer100g != 97 || items[0].Brand != "Fage" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].KcalPer100g < 99.9 || items[1].KcalPer100g > 100.1 {
		t.Fatalf("expected kJ fallback near 100 kcal, got %v", items[1].KcalPer100g)
	}
}

func TestSearchStatusError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	if _, err := c.Search(context.Background(), "rice", 5); err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status error, got %v", err)
	}
}
