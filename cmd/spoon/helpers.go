package spoon

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/app"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/db"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/foodsearch"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/service"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/session"
)

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if env.DBPath != "" {
		return env.DBPath, nil
	}
	return app.DefaultDBPath()
}

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

// newState wires the store, the configured search providers and the session
// state for one command. Profile edits are flushed by the caller.
func newState(ctx context.Context, sqldb *sql.DB) (*service.Store, *session.State, error) {
	store := service.NewStore(sqldb)
	names, err := service.ProviderOrder(ctx, sqldb, service.ConfigSearchProviders, service.DefaultSearchProviders)
	if err != nil {
		return nil, nil, err
	}
	searcher := &foodsearch.Aggregator{
		Catalog:   store,
		Providers: app.SearchProviders(env, names, logger),
		Logger:    logger,
	}
	state := session.New(ctx, store, searcher, session.Options{Logger: logger})
	return store, state, nil
}

// closeState writes any pending profile edit. Commands defer it, so a
// failed write is logged rather than returned.
func closeState(ctx context.Context, state *session.State) {
	if err := state.Close(ctx); err != nil {
		logger.Error("saving pending profile edit failed", "error", err)
	}
}

func barcodeProviders(ctx context.Context, sqldb *sql.DB) ([]service.BarcodeProvider, error) {
	names, err := service.ProviderOrder(ctx, sqldb, service.ConfigBarcodeOrder, service.DefaultBarcodeOrder)
	if err != nil {
		return nil, err
	}
	return app.BarcodeProviders(env, names, logger), nil
}

func parseInt64Arg(name, value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

// resolveDate defaults to today and validates YYYY-MM-DD.
func resolveDate(value string) (string, error) {
	return service.NormalizeDate(value, time.Now())
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(b))
	return nil
}
