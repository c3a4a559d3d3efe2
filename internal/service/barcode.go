package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
)

const (
	defaultBarcodeTTL    = 30 * 24 * time.Hour
	barcodeLookupTimeout = 15 * time.Second
	barcodeProviderLocal = "local"
)

var barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

// BarcodeProvider resolves a single product code.
type BarcodeProvider interface {
	Name() string
	LookupBarcode(ctx context.Context, barcode string) (model.Food, error)
}

type BarcodeLookupResult struct {
	Food        model.Food `json:"food"`
	Provider    string     `json:"provider"`
	FromCache   bool       `json:"from_cache"`
	LookupTrail []string   `json:"lookup_trail,omitempty"`
}

type BarcodeCacheItem struct {
	Provider  string    `json:"provider"`
	Barcode   string    `json:"barcode"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

func isValidBarcode(code string) bool {
	return barcodePattern.MatchString(code)
}

// LookupBarcode checks local foods, then each provider's cache entry, then
// the providers themselves in order. The first hit is cached and stored as
// a food so entries can reference it.
func LookupBarcode(ctx context.Context, db *sql.DB, providers []BarcodeProvider, barcode string, now time.Time) (BarcodeLookupResult, error) {
	barcode = strings.TrimSpace(barcode)
	if !isValidBarcode(barcode) {
		return BarcodeLookupResult{}, invalid("barcode", "invalid barcode %q (expected 8-14 digits)", barcode)
	}

	if f, ok, err := FoodByBarcode(ctx, db, barcode); err != nil {
		return BarcodeLookupResult{}, err
	} else if ok {
		return BarcodeLookupResult{Food: f, Provider: barcodeProviderLocal}, nil
	}

	for _, p := range providers {
		cached, ok, err := lookupBarcodeCache(ctx, db, p.Name(), barcode, now)
		if err != nil {
			return BarcodeLookupResult{}, err
		}
		if ok {
			return BarcodeLookupResult{Food: cached, Provider: p.Name(), FromCache: true}, nil
		}
	}

	if len(providers) == 0 {
		return BarcodeLookupResult{}, fmt.Errorf("barcode %s: %w", barcode, ErrNotFound)
	}
	trail := make([]string, 0, len(providers))
	errs := make([]string, 0, len(providers))
	for _, p := range providers {
		trail = append(trail, p.Name())
		lookupCtx, cancel := context.WithTimeout(ctx, barcodeLookupTimeout)
		f, err := p.LookupBarcode(lookupCtx, barcode)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", p.Name(), err))
			continue
		}
		if f.Barcode == "" {
			f.Barcode = barcode
		}
		stored, err := SaveProviderFood(ctx, db, f, now)
		if err != nil {
			return BarcodeLookupResult{}, err
		}
		if err := upsertBarcodeCache(ctx, db, p.Name(), barcode, stored, now); err != nil {
			return BarcodeLookupResult{}, err
		}
		return BarcodeLookupResult{Food: stored, Provider: p.Name(), LookupTrail: trail}, nil
	}
	return BarcodeLookupResult{}, fmt.Errorf("barcode %s not found across providers [%s]: %w", barcode, strings.Join(errs, "; "), ErrNotFound)
}

func lookupBarcodeCache(ctx context.Context, db *sql.DB, provider, barcode string, now time.Time) (model.Food, bool, error) {
	var raw, expiresAtRaw string
	err := db.QueryRowContext(ctx, `SELECT food_json, expires_at FROM barcode_cache WHERE provider = ? AND barcode = ?`,
		provider, barcode).Scan(&raw, &expiresAtRaw)
	if err == sql.ErrNoRows {
		return model.Food{}, false, nil
	}
	if err != nil {
		return model.Food{}, false, fmt.Errorf("lookup barcode cache: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339, expiresAtRaw)
	if err != nil {
		return model.Food{}, false, fmt.Errorf("parse barcode cache expiry: %w", err)
	}
	if now.After(expiresAt) {
		return model.Food{}, false, nil
	}
	var f model.Food
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return model.Food{}, false, fmt.Errorf("decode barcode cache food: %w", err)
	}
	return f, true, nil
}

func upsertBarcodeCache(ctx context.Context, db *sql.DB, provider, barcode string, f model.Food, now time.Time) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode barcode cache food: %w", err)
	}
	_, err = db.ExecContext(ctx, `
INSERT INTO barcode_cache(provider, barcode, food_json, fetched_at, expires_at)
VALUES(?, ?, ?, ?, ?)
ON CONFLICT(provider, barcode) DO UPDATE SET
  food_json=excluded.food_json,
  fetched_at=excluded.fetched_at,
  expires_at=excluded.expires_at
`, provider, barcode, string(raw), now.UTC().Format(time.RFC3339), now.Add(defaultBarcodeTTL).UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert barcode cache: %w", err)
	}
	return nil
}

func ListBarcodeCache(ctx context.Context, db *sql.DB, provider string, limit int) ([]BarcodeCacheItem, error) {
	provider = normalizeName(provider)
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT provider, barcode, food_json, expires_at FROM barcode_cache`
	args := make([]any, 0, 2)
	if provider != "" {
		query += ` WHERE provider = ?`
		args = append(args, provider)
	}
	query += ` ORDER BY fetched_at DESC LIMIT ?`
	args = append(args, limit)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list barcode cache: %w", err)
	}
	defer rows.Close()
	out := make([]BarcodeCacheItem, 0)
	for rows.Next() {
		var (
			item         BarcodeCacheItem
			raw, expires string
			f            model.Food
		)
		if err := rows.Scan(&item.Provider, &item.Barcode, &raw, &expires); err != nil {
			return nil, fmt.Errorf("scan barcode cache: %w", err)
		}
		if json.Unmarshal([]byte(raw), &f) == nil {
			item.Name = f.Name
		}
		item.ExpiresAt, _ = time.Parse(time.RFC3339, expires)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate barcode cache: %w", err)
	}
	return out, nil
}

// PurgeBarcodeCache removes cache rows. An empty provider and barcode
// removes everything.
func PurgeBarcodeCache(ctx context.Context, db *sql.DB, provider, barcode string) (int64, error) {
	provider = normalizeName(provider)
	barcode = strings.TrimSpace(barcode)
	query := `DELETE FROM barcode_cache WHERE 1 = 1`
	args := make([]any, 0, 2)
	if provider != "" {
		query += ` AND provider = ?`
		args = append(args, provider)
	}
	if barcode != "" {
		query += ` AND barcode = ?`
		args = append(args, barcode)
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge barcode cache: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge barcode cache rows affected: %w", err)
	}
	return affected, nil
}
