package health

import (
	"context"
	"testing"
)

func TestCalculateOverallStatusPrefersUnhealthy(t *testing.T) {
	checks := []Check{{Status: StatusHealthy}, {Status: StatusDegraded}, {Status: StatusUnhealthy}}
	if got := calculateOverallStatus(checks); got != StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %s", got)
	}
}

func TestCalculateOverallStatusDegradedWithoutUnhealthy(t *testing.T) {
	checks := []Check{{Status: StatusHealthy}, {Status: StatusDegraded}}
	if got := calculateOverallStatus(checks); got != StatusDegraded {
		t.Fatalf("expected degraded, got %s", got)
	}
}

func TestRunChecksCollectsAllRegisteredChecks(t *testing.T) {
	c := NewChecker("test")
	c.Register("a", func(ctx context.Context) Check { return Check{Name: "a", Status: StatusHealthy} })
	c.Register("b", func(ctx context.Context) Check { return Check{Name: "b", Status: StatusDegraded} })

	checks := c.runChecks(context.Background())
	if len(checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(checks))
	}
}
