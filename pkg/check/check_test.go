package check

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		mock.Close()
	})
	return mock
}

func TestCheckStatusAggregation(t *testing.T) {
	tests := []struct {
		name           string
		checkStatuses  []Status
		expectedStatus Status
	}{
		{
			name:           "all healthy",
			checkStatuses:  []Status{StatusHealthy, StatusHealthy, StatusHealthy},
			expectedStatus: StatusHealthy,
		},
		{
			name:           "one degraded",
			checkStatuses:  []Status{StatusHealthy, StatusDegraded, StatusHealthy},
			expectedStatus: StatusDegraded,
		},
		{
			name:           "one unhealthy",
			checkStatuses:  []Status{StatusHealthy, StatusUnhealthy, StatusHealthy},
			expectedStatus: StatusUnhealthy,
		},
		{
			name:           "degraded and unhealthy",
			checkStatuses:  []Status{StatusDegraded, StatusUnhealthy, StatusHealthy},
			expectedStatus: StatusUnhealthy,
		},
		{
			name:           "no checks",
			checkStatuses:  []Status{},
			expectedStatus: StatusHealthy,
		},
		{
			name:           "single unhealthy",
			checkStatuses:  []Status{StatusUnhealthy},
			expectedStatus: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner()
			for _, status := range tt.checkStatuses {
				s := status
				runner.Register(func(ctx context.Context) Check {
					return Check{Status: s}
				})
			}

			resp := runner.RunAll(context.Background())
			if resp.Status != tt.expectedStatus {
				t.Errorf("expected status %s, got %s", tt.expectedStatus, resp.Status)
			}
			if len(resp.Checks) != len(tt.checkStatuses) {
				t.Errorf("expected %d check results, got %d", len(tt.checkStatuses), len(resp.Checks))
			}
		})
	}
}

func TestRunAllPreservesOrder(t *testing.T) {
	runner := NewRunner(
		func(ctx context.Context) Check { return Check{Name: "first", Status: StatusHealthy} },
		func(ctx context.Context) Check { return Check{Name: "second", Status: StatusHealthy} },
	)
	runner.Register(func(ctx context.Context) Check {
		return Check{Name: "third", Status: StatusHealthy}
	})

	resp := runner.RunAll(context.Background())

	want := []string{"first", "second", "third"}
	if len(resp.Checks) != len(want) {
		t.Fatalf("expected %d checks, got %d", len(want), len(resp.Checks))
	}
	for i, name := range want {
		if resp.Checks[i].Name != name {
			t.Errorf("checks[%d].Name = %s, want %s", i, resp.Checks[i].Name, name)
		}
	}
}

func TestRunAllFillsDuration(t *testing.T) {
	sleepDuration := 10 * time.Millisecond
	runner := NewRunner(func(ctx context.Context) Check {
		time.Sleep(sleepDuration)
		return Check{Name: "slow", Status: StatusHealthy}
	})

	resp := runner.RunAll(context.Background())
	if resp.Checks[0].Duration < sleepDuration {
		t.Errorf("duration %v less than sleep time %v", resp.Checks[0].Duration, sleepDuration)
	}
	if resp.Checks[0].LastChecked.IsZero() {
		t.Error("LastChecked not set")
	}
}

func TestConnectionCheck(t *testing.T) {
	tests := []struct {
		name           string
		queryErr       error
		expectedStatus Status
		expectedMsg    string
	}{
		{
			name:           "connected",
			queryErr:       nil,
			expectedStatus: StatusHealthy,
			expectedMsg:    "connected",
		},
		{
			name:           "connection error",
			queryErr:       errors.New("connection refused"),
			expectedStatus: StatusUnhealthy,
			expectedMsg:    "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			expect := mock.ExpectQuery(regexp.QuoteMeta("SELECT 1"))
			if tt.queryErr != nil {
				expect.WillReturnError(tt.queryErr)
			} else {
				expect.WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))
			}

			result := ConnectionCheck(mock)(context.Background())

			if result.Name != "connection" {
				t.Errorf("expected name 'connection', got %s", result.Name)
			}
			if result.Status != tt.expectedStatus {
				t.Errorf("expected status %s, got %s", tt.expectedStatus, result.Status)
			}
			if result.Message != tt.expectedMsg {
				t.Errorf("expected message %q, got %q", tt.expectedMsg, result.Message)
			}
		})
	}
}

func TestRecoveryCheck(t *testing.T) {
	tests := []struct {
		name           string
		inRecovery     bool
		probeErr       error
		expectedStatus Status
		expectedMsg    string
	}{
		{
			name:           "writable primary",
			inRecovery:     false,
			expectedStatus: StatusHealthy,
			expectedMsg:    "writable primary",
		},
		{
			name:           "standby",
			inRecovery:     true,
			expectedStatus: StatusHealthy,
			expectedMsg:    "standby (in recovery)",
		},
		{
			name:           "probe failure",
			probeErr:       errors.New("server closed the connection unexpectedly"),
			expectedStatus: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			expect := mock.ExpectQuery(regexp.QuoteMeta("SELECT pg_catalog.pg_is_in_recovery()"))
			if tt.probeErr != nil {
				expect.WillReturnError(tt.probeErr)
			} else {
				expect.WillReturnRows(pgxmock.NewRows([]string{"pg_is_in_recovery"}).AddRow(tt.inRecovery))
			}

			result := RecoveryCheck(mock)(context.Background())

			if result.Status != tt.expectedStatus {
				t.Errorf("expected status %s, got %s", tt.expectedStatus, result.Status)
			}
			if tt.expectedMsg != "" && result.Message != tt.expectedMsg {
				t.Errorf("expected message %q, got %q", tt.expectedMsg, result.Message)
			}
			if tt.probeErr == nil && result.Details["in_recovery"] != tt.inRecovery {
				t.Errorf("expected in_recovery=%v in details", tt.inRecovery)
			}
		})
	}
}

func TestServerVersionCheck(t *testing.T) {
	tests := []struct {
		name           string
		versionNum     string
		versionDisplay string
		queryErr       error
		expectedStatus Status
	}{
		{
			name:           "supported version",
			versionNum:     "170002",
			versionDisplay: "17.2",
			expectedStatus: StatusHealthy,
		},
		{
			name:           "below minimum",
			versionNum:     "90300",
			versionDisplay: "9.3.25",
			expectedStatus: StatusDegraded,
		},
		{
			name:           "query failure",
			queryErr:       errors.New("connection reset"),
			expectedStatus: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			expect := mock.ExpectQuery(regexp.QuoteMeta("current_setting('server_version_num')"))
			if tt.queryErr != nil {
				expect.WillReturnError(tt.queryErr)
			} else {
				expect.WillReturnRows(pgxmock.NewRows([]string{"server_version_num", "server_version"}).
					AddRow(tt.versionNum, tt.versionDisplay))
			}

			result := ServerVersionCheck(mock, DefaultMinServerVersion)(context.Background())

			if result.Status != tt.expectedStatus {
				t.Errorf("expected status %s, got %s", tt.expectedStatus, result.Status)
			}
			if tt.queryErr == nil && result.Details["version"] != tt.versionDisplay {
				t.Errorf("expected version %q in details, got %v", tt.versionDisplay, result.Details["version"])
			}
		})
	}
}
