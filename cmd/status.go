package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/config"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/unitstatus"
)

var onlyWithdrawn bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the persisted unit ledger",
	RunE:  showStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&onlyWithdrawn, "down", false, "only units in status 6")
	rootCmd.AddCommand(statusCmd)
}

func showStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Bot.UnitLedgerPath == "" {
		return fmt.Errorf("bot.unit_ledger_path is not configured")
	}
	ledger, err := unitstatus.Load(cfg.Bot.UnitLedgerPath)
	if err != nil {
		return fmt.Errorf("load unit ledger: %w", err)
	}
	filter := unitstatus.Filter{}
	if onlyWithdrawn {
		filter.CurrentStatus = unitstatus.StateOutOfService
	}
	entries := ledger.List(filter)
	if len(entries) == 0 {
		fmt.Println("no recorded units")
		return nil
	}
	down := color.New(color.FgRed)
	for _, st := range entries {
		line := fmt.Sprintf("%-10s %-16s mission %-8s %s", st.UnitID, st.CurrentStatus, st.LastMissionID, st.UpdatedAt.Format("2006-01-02 15:04:05"))
		if st.CurrentStatus == unitstatus.StateOutOfService {
			down.Println(line)
		} else {
			fmt.Println(line)
		}
	}
	return nil
}
