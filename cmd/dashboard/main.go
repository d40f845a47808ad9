package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/hospital-dashboard/internal/service/rbac"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Hospital dashboard backend-for-frontend",
	}
	rootCmd.PersistentFlags().String("config", "", "Path to config.yml (default: ./config.yml, ./config/config.yml)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(rolesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			return runServer(cmd.Context(), path)
		},
	}
}

// projectCmd prints what a role sees, for checking the role table without a login.
func projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project <user_type> <role_level>",
		Short: "Print the UI projection for a role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj := rbac.NewProjector(nil).ProjectRaw(args[0], args[1])

			tab, _ := cmd.Flags().GetString("isolate")
			if tab != "" {
				isolated, ok := proj.Isolate(rbac.Region(tab))
				if !ok {
					return fmt.Errorf("tab %q is not visible to %s", tab, proj.Role)
				}
				proj = isolated
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(proj)
		},
	}
	cmd.Flags().String("isolate", "", "Isolate one modal tab, e.g. tab.pricing")
	return cmd
}

func rolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "List the roles that have a projection",
		RunE: func(cmd *cobra.Command, args []string) error {
			var keys []string
			for _, r := range rbac.KnownRoles() {
				keys = append(keys, r.Key())
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}
