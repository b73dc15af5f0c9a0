package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgherd/pgherd/pkg/check"
	"github.com/pgherd/pgherd/pkg/db"
	"github.com/pgherd/pgherd/pkg/primary"
)

var primaryCmd = &cobra.Command{
	Use:   "primary",
	Short: "Discover which registered node is the live writable primary",
	Long: `Primary probes the registered nodes in registry order and reports the
first one that answers as writable. The registry's stored roles are
treated as hints only; each node is asked directly.`,
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

		finder := primary.NewFinder(primary.FinderConfig{
			ProbeTimeout: cfg.ProbeTimeout.Std(),
			Logger:       logger,
		})

		p, err := finder.Find(ctx, conn)
		if err != nil {
			return err
		}
		defer p.Conn.Close(ctx)

		fmt.Printf("node %d is the current primary\nconninfo: %s\n", p.NodeID, p.Conninfo)
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run liveness checks against this node",
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

		runner := check.NewRunner(
			check.ConnectionCheck(conn),
			check.RecoveryCheck(conn),
			check.ServerVersionCheck(conn, check.DefaultMinServerVersion),
		)

		resp := runner.RunAll(ctx)
		for _, c := range resp.Checks {
			fmt.Printf("%-15s %s  %s\n", c.Name, renderStatus(c.Status), c.Message)
		}

		if resp.Status == check.StatusUnhealthy {
			return errors.New("one or more checks failed")
		}
		return nil
	},
}

func renderStatus(s check.Status) string {
	switch s {
	case check.StatusHealthy:
		return healthyStyle.Render(string(s))
	case check.StatusDegraded:
		return degradedStyle.Render(string(s))
	default:
		return unhealthyStyle.Render(string(s))
	}
}
