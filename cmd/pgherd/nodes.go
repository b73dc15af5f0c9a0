package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pgherd/pgherd/pkg/db"
	"github.com/pgherd/pgherd/pkg/metrics"
	"github.com/pgherd/pgherd/pkg/registry"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the pgherd schema in the cluster metadata store",
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

		if err := registry.CreateSchema(ctx, conn); err != nil {
			return err
		}

		logger.Info("metadata schema ready", zap.String("schema", "pgherd"))
		fmt.Println("pgherd metadata schema initialized")
		return nil
	},
}

var nodeTypeFlag string

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register or update this node in the cluster registry",
	Long: `Register writes this node's configuration into the shared registry,
creating the record on first registration and overwriting it on
subsequent runs. Unless --type is given, the node's role is detected by
asking the server whether it is in recovery.`,
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

		nodeType, err := resolveNodeType(ctx, conn, nodeTypeFlag)
		if err != nil {
			return err
		}

		record := &registry.NodeRecord{
			ID:       cfg.NodeID,
			Type:     nodeType,
			Name:     cfg.NodeName,
			Conninfo: cfg.Conninfo,
			SlotName: cfg.ReplicationSlot,
			Priority: cfg.Priority,
			Active:   true,
		}

		start := time.Now()
		operation := "register"

		_, err = registry.GetNodeRecord(ctx, conn, cfg.NodeID)
		switch {
		case errors.Is(err, registry.ErrNotFound):
			err = registry.CreateNodeRecord(ctx, conn, record)
		case err != nil:
			return err
		default:
			operation = "update"
			err = registry.UpdateNodeRecord(ctx, conn, record)
		}

		status := "success"
		details := fmt.Sprintf("node %d (%s) registered as %s", cfg.NodeID, cfg.NodeName, nodeType)
		if err != nil {
			status = "error"
			details = err.Error()
		}
		metrics.DefaultRegistry().RecordRegistryOperation(operation, status, time.Since(start))

		eventName := string(nodeType) + "_register"
		if _, evErr := registry.CreateEvent(ctx, conn, cfg.NodeID, eventName, err == nil, details); evErr != nil {
			logger.Warn("unable to record cluster event", zap.Error(evErr))
		}

		if err != nil {
			return err
		}

		logger.Info("node registered",
			zap.Int("node", cfg.NodeID),
			zap.String("name", cfg.NodeName),
			zap.String("type", string(nodeType)))
		fmt.Println(details)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&nodeTypeFlag, "type", "", "node type to record (primary, standby, witness, bdr); detected from the server when omitted")
}

// resolveNodeType returns the explicit --type value, or asks the server
// whether it is in recovery and records primary or standby accordingly.
func resolveNodeType(ctx context.Context, conn db.RowQuerier, explicit string) (registry.NodeType, error) {
	if explicit != "" {
		return registry.ParseNodeType(explicit)
	}

	standby, err := db.IsStandby(ctx, conn)
	if err != nil {
		return "", fmt.Errorf("failed to detect node role: %w", err)
	}
	if standby {
		return registry.NodeTypeStandby, nil
	}
	return registry.NodeTypePrimary, nil
}
