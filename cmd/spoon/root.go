package spoon

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/app"
)

var (
	dbPath string
	env    app.Env
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "spoon",
	Short: "spoon tracks calories, macros and exercise from your terminal",
	Long:  "spoon is a local-first calorie tracker: goal calculation, a food diary, food search across USDA, Open Food Facts and FatSecret, and a REST API.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		env = app.LoadEnv()
		logger = app.NewLogger(cmd.ErrOrStderr(), env.LogLevel, false)
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database (default $SPOON_DB_PATH or the user config dir)")
}
