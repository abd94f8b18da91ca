package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/config"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/catalog"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/game"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/infra/logger"
)

var refreshCatalog bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the cached mission-type catalog",
	RunE:  showCatalog,
}

func init() {
	catalogCmd.Flags().BoolVar(&refreshCatalog, "refresh", false, "fetch a fresh catalog before reporting")
	rootCmd.AddCommand(catalogCmd)
}

func showCatalog(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cache := catalog.New(cfg.Cache.Path, time.Duration(cfg.Cache.MaxAgeHours)*time.Hour, logger.New("catalog"))
	if err := cache.Load(); err != nil {
		return fmt.Errorf("load catalog cache: %w", err)
	}

	if refreshCatalog || cache.Stale() {
		session, err := game.NewSession(cfg.Game, logger.New("session"))
		if err != nil {
			return err
		}
		if err := session.Login(ctx); err != nil {
			return fmt.Errorf("login: %w", err)
		}
		if err := cache.Refresh(ctx, session); err != nil {
			return fmt.Errorf("refresh catalog: %w", err)
		}
	}

	stats := cache.ComputeStats()
	bold := color.New(color.Bold)
	bold.Printf("mission types: %d\n", stats.MissionTypes)
	fmt.Printf("  with fixed requirements: %d\n", stats.WithFixedReqs)
	fmt.Printf("  with chance-based hints: %d\n", stats.WithChances)
	fmt.Printf("  unresolvable from catalog: %d\n", stats.Unresolvable)
	fmt.Printf("average credits: mean %.0f, median %.0f, p90 %.0f\n",
		stats.MeanCredits, stats.MedianCredits, stats.Credits90thPct)
	return nil
}
