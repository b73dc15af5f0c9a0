package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// SetConfig sets a session configuration parameter. SET takes no placeholder
// parameters, so the name is sanitized as an identifier and the value as a
// quoted literal.
func SetConfig(ctx context.Context, e Execer, name, value string) error {
	sql := fmt.Sprintf("SET %s TO %s", pgx.Identifier{name}.Sanitize(), quoteLiteral(value))
	if _, err := e.Exec(ctx, sql); err != nil {
		return fmt.Errorf("unable to set %q: %w", name, err)
	}
	return nil
}

// SetConfigBool sets a boolean session configuration parameter.
func SetConfigBool(ctx context.Context, e Execer, name string, value bool) error {
	setting := "false"
	if value {
		setting = "true"
	}
	sql := fmt.Sprintf("SET %s TO %s", pgx.Identifier{name}.Sanitize(), setting)
	if _, err := e.Exec(ctx, sql); err != nil {
		return fmt.Errorf("unable to set %q: %w", name, err)
	}
	return nil
}

// IsStandby asks a node directly whether it is currently in recovery, i.e.
// acting as a standby. This is the liveness probe primary discovery relies
// on instead of trusting any stored role.
func IsStandby(ctx context.Context, q RowQuerier) (bool, error) {
	var inRecovery bool
	err := q.QueryRow(ctx, "SELECT pg_catalog.pg_is_in_recovery()").Scan(&inRecovery)
	if err != nil {
		return false, fmt.Errorf("unable to determine recovery state: %w", err)
	}
	return inRecovery, nil
}

// ServerVersion returns the server's numeric version (e.g. 170002) and its
// display form (e.g. "17.2").
func ServerVersion(ctx context.Context, q RowQuerier) (int, string, error) {
	var num, display string
	err := q.QueryRow(ctx,
		"SELECT pg_catalog.current_setting('server_version_num'), pg_catalog.current_setting('server_version')",
	).Scan(&num, &display)
	if err != nil {
		return 0, "", fmt.Errorf("unable to determine server version: %w", err)
	}

	version, err := strconv.Atoi(num)
	if err != nil {
		return 0, "", fmt.Errorf("unable to parse server version %q: %w", num, err)
	}
	return version, display, nil
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
