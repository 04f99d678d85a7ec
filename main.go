package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"hexflow/internal/config"
	"hexflow/internal/health"
)

var version = "0.3.0"

var opts flags

var rootCmd = &cobra.Command{
	Use:   "hexflow",
	Short: "hexflow — a terminal canvas for service graphs",
	Long: brand.Sprint("hexflow") + " — arrange nodes, draw connections and watch their health\n" +
		subtle.Sprint("Run without a subcommand to open the canvas"),
	Version:      version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCanvas(cmd.Context(), opts)
	},
}

func init() {
	rootCmd.SetVersionTemplate("hexflow {{ .Version }}\n")
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	pf.StringVar(&opts.dbPath, "db", "", "Graph database path")
	pf.BoolVar(&opts.memory, "memory", false, "Keep the graph in memory instead of sqlite")
	pf.StringVar(&opts.seedPath, "seed", "", "Load nodes and connections from a YAML file first")
	rootCmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	rootCmd.AddCommand(
		nodesCmd(),
		checkCmd(),
		seedCmd(),
	)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		bad.Fprintf(os.Stderr, "hexflow: %v\n", err)
		os.Exit(1)
	}
}

func runCanvas(ctx context.Context, f flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	logPath := filepath.Join(config.ConfigDir(), "hexflow.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return err
	}
	logFile, err := tea.LogToFile(logPath, "hexflow")
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer logFile.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	st, closeStore, err := openStore(ctx, cfg, f)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics.Addr)
	}

	monitor, closeHistory := newMonitor(ctx, cfg, st)
	defer closeHistory()

	m := newModel(st, canvasOptions(cfg))
	m.monitor = monitor
	defer m.canvas.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())

	m.canvas.Committer().OnError = func(id string, err error) {
		p.Send(commitErrMsg{id: id, err: err})
	}
	monitor.OnUpdate = func(u health.Update) {
		p.Send(statusMsg(u))
	}
	go func() {
		if err := monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Heartbeat monitor stopped: %v", err)
		}
	}()

	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Printf("Serving metrics on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("Metrics server failed: %v", err)
	}
}
