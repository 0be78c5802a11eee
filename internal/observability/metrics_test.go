package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestOutcome(t *testing.T) {
	if Outcome(nil) != "ok" || Outcome(errors.New("x")) != "error" {
		t.Fatalf("unexpected outcome labels")
	}
}

func TestDomainCounters_Increment(t *testing.T) {
	before := testutil.ToFloat64(InsightTransitions.WithLabelValues("rejected"))
	InsightTransitions.WithLabelValues("rejected").Inc()
	if got := testutil.ToFloat64(InsightTransitions.WithLabelValues("rejected")); got != before+1 {
		t.Fatalf("counter = %v; want %v", got, before+1)
	}

	FunctionRuns.WithLabelValues("generate-latest-items", Outcome(nil)).Inc()
	if testutil.ToFloat64(FunctionRuns.WithLabelValues("generate-latest-items", "ok")) < 1 {
		t.Fatalf("function counter not incremented")
	}
}
