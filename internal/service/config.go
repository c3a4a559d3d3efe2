package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	ConfigSearchProviders = "search_providers"
	ConfigSearchLimit     = "search_limit"
	ConfigBarcodeOrder    = "barcode_providers"
)

// noProviders disables a provider list; lookups then use local data only.
const noProviders = "none"

var (
	DefaultSearchProviders = []string{"usda", "openfoodfacts", "fatsecret"}
	DefaultBarcodeOrder    = []string{"openfoodfacts", "usda", "upcitemdb"}
)

const defaultSearchLimit = 20

type configKey struct {
	def      string
	validate func(value string) error
}

var configKeys = map[string]configKey{
	ConfigSearchProviders: {
		def:      strings.Join(DefaultSearchProviders, ","),
		validate: providerList("usda", "openfoodfacts", "fatsecret"),
	},
	ConfigBarcodeOrder: {
		def:      strings.Join(DefaultBarcodeOrder, ","),
		validate: providerList("openfoodfacts", "usda", "upcitemdb"),
	},
	ConfigSearchLimit: {
		def: strconv.Itoa(defaultSearchLimit),
		validate: func(value string) error {
			if n, err := strconv.Atoi(value); err != nil || n <= 0 || n > 100 {
				return fmt.Errorf("must be an integer between 1 and 100")
			}
			return nil
		},
	},
}

func providerList(known ...string) func(string) error {
	return func(value string) error {
		names := splitProviders(value)
		if len(names) == 1 && names[0] == noProviders {
			return nil
		}
		if len(names) == 0 {
			return fmt.Errorf("list at least one provider or %q", noProviders)
		}
		for _, n := range names {
			ok := false
			for _, k := range known {
				ok = ok || n == k
			}
			if !ok {
				return fmt.Errorf("unknown provider %q (known: %s)", n, strings.Join(known, ", "))
			}
		}
		return nil
	}
}

func splitProviders(value string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(value, ",") {
		if p = normalizeName(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func configKeyFor(key string) (string, configKey, error) {
	key = strings.TrimSpace(strings.ToLower(strings.ReplaceAll(key, "-", "_")))
	k, ok := configKeys[key]
	if !ok {
		return key, configKey{}, invalid("key", "unknown config key %q (known: %s)", key, strings.Join(ConfigKeys(), ", "))
	}
	return key, k, nil
}

// ConfigKeys lists the settable keys in name order.
func ConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func SetConfig(ctx context.Context, db *sql.DB, key, value string) error {
	key, k, err := configKeyFor(key)
	if err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	if err := k.validate(value); err != nil {
		return invalid(key, "%s", err.Error())
	}
	_, err = db.ExecContext(ctx, `
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, value)
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

// UnsetConfig restores the default for key.
func UnsetConfig(ctx context.Context, db *sql.DB, key string) error {
	key, _, err := configKeyFor(key)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM app_config WHERE key = ?`, key); err != nil {
		return fmt.Errorf("unset config %q: %w", key, err)
	}
	return nil
}

// GetConfig returns the stored value; ok is false when key is unset.
func GetConfig(ctx context.Context, db *sql.DB, key string) (string, bool, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return "", false, invalid("key", "config key is required")
	}
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

type ConfigValue struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Default bool   `json:"default"`
}

// EffectiveConfig reports every known key with its stored value or default.
func EffectiveConfig(ctx context.Context, db *sql.DB) ([]ConfigValue, error) {
	out := make([]ConfigValue, 0, len(configKeys))
	for _, key := range ConfigKeys() {
		value, ok, err := GetConfig(ctx, db, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			value = configKeys[key].def
		}
		out = append(out, ConfigValue{Key: key, Value: value, Default: !ok})
	}
	return out, nil
}

// ProviderOrder reads a comma separated provider list, falling back to def.
// "none" yields an empty list.
func ProviderOrder(ctx context.Context, db *sql.DB, key string, def []string) ([]string, error) {
	value, ok, err := GetConfig(ctx, db, key)
	if err != nil || !ok {
		return def, err
	}
	names := splitProviders(value)
	if len(names) == 1 && names[0] == noProviders {
		return []string{}, nil
	}
	if len(names) == 0 {
		return def, nil
	}
	return names, nil
}

func SearchLimit(ctx context.Context, db *sql.DB) (int, error) {
	value, ok, err := GetConfig(ctx, db, ConfigSearchLimit)
	if err != nil || !ok {
		return defaultSearchLimit, err
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultSearchLimit, nil
	}
	return n, nil
}
