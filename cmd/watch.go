package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/palengkelab/agriprice-cli/internal/report"
	"github.com/palengkelab/agriprice-cli/internal/utils"
	"github.com/palengkelab/agriprice-cli/internal/watch"
)

var watchOut string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the report whenever a source CSV changes",
	Long: `Watch the configured price and typhoon CSVs and rebuild the Markdown
report on every change. Runs in the foreground until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}
		paths, err := cfg.ResolvePriceFiles()
		if err != nil {
			return err
		}
		watched := append([]string{}, paths...)
		if tp := cfg.ResolveTyphoonFile(); tp != "" {
			if _, err := os.Stat(tp); err == nil {
				watched = append(watched, tp)
			}
		}

		outDir := cfg.OutputDir
		if watchOut != "" {
			outDir = watchOut
		}
		if err := utils.EnsureDir(outDir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		mdPath := filepath.Join(outDir, "report.md")

		rebuild := func() {
			prices, typhoons, err := loadTables()
			if err != nil {
				fmt.Fprintf(os.Stderr, "⚠ Rebuild failed: %v\n", err)
				return
			}
			r := report.Build(prices, typhoons, buildOptions())
			if err := r.WriteFile(mdPath); err != nil {
				fmt.Fprintf(os.Stderr, "⚠ Rebuild failed: %v\n", err)
				return
			}
			fmt.Printf("✓ %s rebuilt %s (%d records, %d spikes)\n",
				time.Now().Format("15:04:05"), mdPath, r.Overview.Records, r.Overview.TotalSpikes)
		}
		rebuild()

		w, err := watch.New(watched, func(changed []string) {
			for _, p := range changed {
				dataCache.Invalidate(p)
			}
			fmt.Printf("Changed: %s\n", strings.Join(changed, ", "))
			rebuild()
		})
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		if err := w.Start(ctx); err != nil {
			return err
		}
		fmt.Printf("Watching %d files. Press Ctrl+C to stop.\n", len(watched))

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received signal %v, shutting down...\n", sig)
		cancel()
		return w.Stop()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "output directory (default from config)")
}
