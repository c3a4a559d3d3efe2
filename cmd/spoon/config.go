package spoon

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/service"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage spoon local configuration",
	Long: "Keys: " + strings.Join(service.ConfigKeys(), ", ") + ".\n" +
		"Provider lists are comma separated in fallback order; \"none\" disables external lookups.",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetConfig(cmd.Context(), sqldb, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], strings.TrimSpace(args[1]))
			return nil
		})
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Restore a configuration value to its default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			return service.UnsetConfig(cmd.Context(), sqldb, args[0])
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show effective configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			values, err := service.EffectiveConfig(cmd.Context(), sqldb)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, v := range values {
				if len(args) == 1 && v.Key != strings.ReplaceAll(strings.ToLower(args[0]), "-", "_") {
					continue
				}
				if v.Default {
					fmt.Fprintf(out, "%s\t%s\t(default)\n", v.Key, v.Value)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", v.Key, v.Value)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configUnsetCmd, configGetCmd)
}
