package usda

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookupBarcodeParsesUSDAResponse(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "demo" {
			t.Errorf("expected api key to be forwarded")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "foods": [
    {
      "fdcId": 99,
      "description": "Other Yogurt",
      "gtinUpc": "000000000000"
    },
    {
      "fdcId": 12345,
      "description": "Greek Yogurt",
      "brandOwner": "Test Brand",
      "gtinUpc": "012345678905",
      "servingSize": 170,
      "servingSizeUnit": "g",
      "householdServingFullText": "1 container",
      "foodNutrients": [
        {"nutrientName": "Energy", "unitName": "kJ", "value": 247},
        {"nutrientName": "Energy", "unitName": "KCAL", "value": 59},
        {"nutrientName": "Protein", "unitName": "G", "value": 10},
        {"nutrientName": "Carbohydrate, by difference", "unitName": "G", "value": 3.6},
        {"nutrientName": "Total lipid (fat)", "unitName": "G", "value": 0.4},
        {"nutrientName": "Sodium, Na", "unitName": "MG", "value": 36}
      ]
    }
  ]
}`))
	}))
	defer ts.Close()

	c := &Client{APIKey: "demo", BaseURL: ts.URL, HTTPClient: ts.Client()}
	item, err := c.LookupBarcode(context.Background(), "012345678905")
	if err != nil {
		t.Fatalf("lookup barcode: %v", err)
	}
	if item.Name != "Greek Yogurt" || item.Brand != "Test Brand" {
		t.Fatalf("unexpected identity: %+v", item)
	}
	if item.KcalPer100g != 59 || item.ProteinPer100g != 10 || item.CarbsPer100g != 3.6 || item.FatPer100g != 0.4 {
		t.Fatalf("unexpected nutrients: %+v", item)
	}
	if item.SodiumPer100g != 36 {
		t.Fatalf("expected sodium 36 mg, got %v", item.SodiumPer100g)
	}
	if item.GramsPerServing == nil || *item.GramsPerServing != 170 || item.ServingLabel != "1 container" {
		t.Fatalf("unexpected serving: %+v", item)
	}
	if item.Source != "USDA" || item.Barcode != "012345678905" {
		t.Fatalf("unexpected source/barcode: %+v", item)
	}
}

func TestSearchSendsQueryAndDataTypes(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query    string   `json:"query"`
			DataType []string `json:"dataType"`
			PageSize int      `json:"pageSize"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Query != "banana" || body.PageSize != 3 || len(body.DataType) != 3 {
			t.Errorf("unexpected request body: %+v", body)
		}
		_, _ = w.Write([]byte(`{"foods": [
  {"description": "Bananas, raw", "foodCategory": "Fruits and Fruit Juices", "foodNutrients": [
    {"nutrientName": "Energy", "unitName": "KCAL", "value": 89},
    {"nutrientName": "Carbohydrate, by difference", "unitName": "G", "value": 22.8}
  ]},
  {"description": ""}
]}`))
	}))
	defer ts.Close()

	c := &Client{APIKey: "demo", BaseURL: ts.URL, HTTPClient: ts.Client()}
	items, err := c.Search(context.Background(), "banana", 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one named food, got %d", len(items))
	}
	if items[0].KcalPer100g != 89 || items[0].CarbsPer100g != 22.8 || items[0].Category != "Fruits and Fruit Juices" {
		t.Fatalf("unexpected food: %+v", items[0])
	}
	if items[0].GramsPerServing != nil {
		t.Fatalf("expected no serving for generic food")
	}
}

func TestSearchRequiresAPIKey(t *testing.T) {
	t.Parallel()
	c := &Client{}
	if _, err := c.Search(context.Background(), "rice", 5); err == nil {
		t.Fatalf("expected missing key error")
	}
}
