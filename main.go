package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sysconsole/internal/audit"
	"sysconsole/internal/config"
	"sysconsole/internal/engine"
	"sysconsole/internal/sysquery"
	"sysconsole/ui/tui"
)

var (
	flagConfig    string
	flagAuditPath string
	flagNoAudit   bool
	flagNoConfirm bool
	flagStartTab  string
)

var rootCmd = &cobra.Command{
	Use:     "sysconsole",
	Version: "1.0.0",
	Short:   "Live diagnostic console for processes, services, connections, and file locks",
	Long: `sysconsole is a terminal console for live system diagnostics.

It polls processes, services, and TCP/UDP connections on a fixed cadence,
finds which processes hold locks on files, and lets an elevated operator
kill processes and start or stop services. Mutating actions are written
to an embedded audit journal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("audit-path") {
			cfg = cfg.WithAuditPath(flagAuditPath)
		}
		if flagNoAudit {
			cfg = cfg.WithAudit(false)
		}
		if flagNoConfirm {
			cfg = cfg.WithConfirmKills(false)
		}
		if cmd.Flags().Changed("tab") {
			cfg = cfg.WithStartTab(flagStartTab)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		opts := engine.Options{Elevated: sysquery.CallerElevated()}
		if cfg.AuditEnabled {
			journal, err := audit.Open(cfg.AuditPath, audit.WithTimeout(cfg.ActionTimeout))
			if err != nil {
				return fmt.Errorf("failed to open audit journal: %w", err)
			}
			defer journal.Close()
			opts.Journal = journal
		}

		return tui.Start(engine.New(opts), cfg)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to a config file")
	rootCmd.Flags().StringVar(&flagAuditPath, "audit-path", "", "audit journal database file (empty keeps it in memory)")
	rootCmd.Flags().BoolVar(&flagNoAudit, "no-audit", false, "disable the action audit journal")
	rootCmd.Flags().BoolVar(&flagNoConfirm, "no-confirm", false, "skip the confirmation prompt before kills")
	rootCmd.Flags().StringVar(&flagStartTab, "tab", "processes", "tab to open on startup (processes, services, connections)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
