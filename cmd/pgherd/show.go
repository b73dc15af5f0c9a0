package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pgherd/pgherd/pkg/config"
	"github.com/pgherd/pgherd/pkg/db"
	"github.com/pgherd/pgherd/pkg/metrics"
	"github.com/pgherd/pgherd/pkg/primary"
	"github.com/pgherd/pgherd/pkg/registry"
)

var (
	tableBorderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 1)

	tableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	healthyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	degradedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00"))

	unhealthyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Cluster-wide registry views",
}

var clusterShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show every registered node and mark the live primary",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		conn, err := db.Connect(ctx, cfg.Conninfo)
		if err != nil {
			return err
		}
		defer conn.Close(ctx)

		nodes, err := registry.GetAllNodeRecords(ctx, conn)
		if err != nil {
			return err
		}
		metrics.DefaultRegistry().SetRegisteredNodes(len(nodes))

		livePrimary := discoverPrimaryID(ctx, cfg, logger, conn)

		tbl := newTable().
			Headers("ID", "NAME", "TYPE", "UPSTREAM", "PRIORITY", "ACTIVE", "SLOT", "LIVE")

		for _, n := range nodes {
			upstream := "-"
			if n.UpstreamID != registry.NoUpstreamNode {
				upstream = strconv.Itoa(n.UpstreamID)
			}
			slot := n.SlotName
			if slot == "" {
				slot = "-"
			}
			live := ""
			if n.ID == livePrimary {
				live = "*"
			}

			tbl.Row(
				strconv.Itoa(n.ID),
				n.Name,
				string(n.Type),
				upstream,
				strconv.Itoa(n.Priority),
				strconv.FormatBool(n.Active),
				slot,
				live,
			)
		}

		fmt.Println(tbl)

		if livePrimary == 0 {
			fmt.Println("no writable primary is currently reachable")
		}
		return nil
	},
}

var eventsLimit int

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent cluster events",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		conn, err := db.Connect(ctx, cfg.Conninfo)
		if err != nil {
			return err
		}
		defer conn.Close(ctx)

		events, err := registry.GetRecentEvents(ctx, conn, eventsLimit)
		if err != nil {
			return err
		}

		tbl := newTable().
			Headers("ID", "NODE", "EVENT", "OK", "TIMESTAMP", "DETAILS")

		for _, e := range events {
			tbl.Row(
				strconv.FormatInt(e.ID, 10),
				strconv.Itoa(e.NodeID),
				e.Event,
				strconv.FormatBool(e.Successful),
				e.Timestamp.Format("2006-01-02 15:04:05"),
				e.Details,
			)
		}

		fmt.Println(tbl)
		return nil
	},
}

func init() {
	clusterCmd.AddCommand(clusterShowCmd)
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 20, "maximum number of events to show")
}

func newTable() *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
}

// discoverPrimaryID probes the registered candidates and returns the
// live primary's node id, or 0 when none answers as writable.
func discoverPrimaryID(ctx context.Context, cfg *config.Config, logger *zap.Logger, conn db.Querier) int {
	finder := primary.NewFinder(primary.FinderConfig{
		ProbeTimeout: cfg.ProbeTimeout.Std(),
		Logger:       logger,
	})

	p, err := finder.Find(ctx, conn)
	if err != nil {
		if !errors.Is(err, primary.ErrNoPrimary) {
			logger.Warn("primary discovery failed", zap.Error(err))
		}
		return 0
	}

	if closeErr := p.Conn.Close(ctx); closeErr != nil {
		logger.Debug("failed to close primary connection", zap.Error(closeErr))
	}
	return p.NodeID
}
