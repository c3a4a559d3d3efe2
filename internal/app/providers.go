package app

import (
	"log/slog"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/foodsearch"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/provider/fatsecret"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/provider/openfoodfacts"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/provider/upcitemdb"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/provider/usda"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/service"
)

// SearchProviders builds the configured search providers in order. Providers
// that need credentials are skipped when none are set.
func SearchProviders(env Env, names []string, logger *slog.Logger) []foodsearch.Provider {
	out := make([]foodsearch.Provider, 0, len(names))
	for _, name := range names {
		switch name {
		case "usda":
			if env.USDAAPIKey == "" {
				logger.Debug("skipping provider without credentials", "provider", name)
				continue
			}
			out = append(out, &usda.Client{APIKey: env.USDAAPIKey})
		case "openfoodfacts", "off":
			out = append(out, &openfoodfacts.Client{})
		case "fatsecret":
			if env.FatSecretClientID == "" || env.FatSecretClientSecret == "" {
				logger.Debug("skipping provider without credentials", "provider", name)
				continue
			}
			out = append(out, &fatsecret.Client{ClientID: env.FatSecretClientID, ClientSecret: env.FatSecretClientSecret})
		case "upcitemdb", "upc":
			out = append(out, upcClient(env))
		default:
			logger.Warn("unknown search provider", "provider", name)
		}
	}
	return out
}

// BarcodeProviders builds the barcode lookup chain in order.
func BarcodeProviders(env Env, names []string, logger *slog.Logger) []service.BarcodeProvider {
	out := make([]service.BarcodeProvider, 0, len(names))
	for _, name := range names {
		switch name {
		case "openfoodfacts", "off":
			out = append(out, &openfoodfacts.Client{})
		case "usda":
			if env.USDAAPIKey == "" {
				logger.Debug("skipping provider without credentials", "provider", name)
				continue
			}
			out = append(out, &usda.Client{APIKey: env.USDAAPIKey})
		case "upcitemdb", "upc":
			out = append(out, upcClient(env))
		default:
			logger.Warn("unknown barcode provider", "provider", name)
		}
	}
	return out
}

// Without a key UPCitemdb falls back to its rate-limited trial endpoint.
func upcClient(env Env) *upcitemdb.Client {
	return &upcitemdb.Client{APIKey: env.UPCItemDBAPIKey}
}
