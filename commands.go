package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hexflow/internal/graph"
	"hexflow/internal/health"
)

var (
	brand  = color.New(color.FgHiCyan, color.Bold)
	subtle = color.New(color.FgHiBlack)
	good   = color.New(color.FgGreen)
	warn   = color.New(color.FgYellow)
	bad    = color.New(color.FgRed)
)

func statusColor(s graph.Status) *color.Color {
	switch s {
	case graph.StatusActive:
		return good
	case graph.StatusWarning:
		return warn
	case graph.StatusInactive:
		return bad
	default:
		return subtle
	}
}

func nodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "nodes",
		Aliases: []string{"ls"},
		Short:   "List nodes and their connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			st, closeStore, err := openStore(ctx, cfg, opts)
			if err != nil {
				return err
			}
			defer closeStore()

			nodes, err := st.ListNodes(ctx)
			if err != nil {
				return fmt.Errorf("failed to list nodes: %w", err)
			}
			conns, err := st.ListConnections(ctx)
			if err != nil {
				return fmt.Errorf("failed to list connections: %w", err)
			}

			if len(nodes) == 0 {
				fmt.Println("  No nodes.")
				return nil
			}

			names := make(map[string]string, len(nodes))
			for _, n := range nodes {
				names[n.ID] = n.Name
			}

			fmt.Printf("%s %s\n\n", brand.Sprint("hexflow"), subtle.Sprintf("%d nodes, %d connections", len(nodes), len(conns)))
			for _, n := range nodes {
				pos := subtle.Sprint("unplaced")
				if n.Position != nil {
					pos = fmt.Sprintf("(%.0f, %.0f)", n.Position.X, n.Position.Y)
				}
				fmt.Printf("  %s %-20s %-10s %s %s\n",
					statusColor(n.Status).Sprint("●"), n.Name, n.Type, pos, subtle.Sprint(n.ID))
			}
			if len(conns) > 0 {
				fmt.Println()
			}
			for _, c := range conns {
				fmt.Printf("  %s:%d → %s:%d %s\n",
					names[c.SourceID], c.SourcePoint, names[c.TargetID], c.TargetPoint, subtle.Sprint(c.Type))
			}
			return nil
		},
	}
}

func checkCmd() *cobra.Command {
	var history int
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one heartbeat sweep and print each node's status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			st, closeStore, err := openStore(ctx, cfg, opts)
			if err != nil {
				return err
			}
			defer closeStore()

			monitor, closeHistory := newMonitor(ctx, cfg, st)
			defer closeHistory()

			start := time.Now()
			if err := monitor.Sweep(ctx); err != nil {
				return err
			}

			nodes, err := st.ListNodes(ctx)
			if err != nil {
				return fmt.Errorf("failed to list nodes: %w", err)
			}
			sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })

			counts := make(map[graph.Status]int)
			for _, n := range nodes {
				status, _ := monitor.Status(n.ID)
				counts[status]++
				line := fmt.Sprintf("  %s %-20s %s", statusColor(status).Sprint("●"), n.Name, statusColor(status).Sprint(status))
				if n.Endpoint == "" {
					fmt.Println(line + subtle.Sprint(" no endpoint"))
					continue
				}
				samples, err := monitor.History().Recent(ctx, n.ID, history)
				if err != nil {
					return fmt.Errorf("failed to read history for %s: %w", n.Name, err)
				}
				if len(samples) > 0 {
					line += subtle.Sprintf(" %s", formatSample(samples[0]))
				}
				fmt.Println(line)
				for _, s := range samples[min(1, len(samples)):] {
					fmt.Println(subtle.Sprintf("      %s", formatSample(s)))
				}
			}

			fmt.Printf("\n  %s active, %s warning, %s inactive, %s pending %s\n",
				good.Sprint(counts[graph.StatusActive]),
				warn.Sprint(counts[graph.StatusWarning]),
				bad.Sprint(counts[graph.StatusInactive]),
				subtle.Sprint(counts[graph.StatusPending]),
				subtle.Sprintf("in %s", time.Since(start).Round(time.Millisecond)))
			return nil
		},
	}
	cmd.Flags().IntVar(&history, "history", 1, "Recent samples to show per node")
	return cmd
}

func formatSample(s health.Sample) string {
	at := s.At.Format("15:04:05")
	if !s.Success {
		return fmt.Sprintf("%s failed: %s", at, s.Error)
	}
	return fmt.Sprintf("%s %s", at, s.Latency.Round(time.Millisecond))
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Import nodes and connections from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := opts
			f.seedPath = args[0]
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			st, closeStore, err := openStore(ctx, cfg, f)
			if err != nil {
				return err
			}
			defer closeStore()

			nodes, err := st.ListNodes(ctx)
			if err != nil {
				return fmt.Errorf("failed to list nodes: %w", err)
			}
			good.Printf("  ✓ Imported %s, store now has %d nodes\n", args[0], len(nodes))
			return nil
		},
	}
}
