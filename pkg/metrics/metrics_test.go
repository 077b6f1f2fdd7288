package metrics

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intakebot/pkg/proto"
)

// The recorder registers with the default registry, so it is created once
// for the whole test binary.
var testRecorder = NewPrometheusRecorder(func() int { return 3 }) //nolint:gochecknoglobals

func TestRecorderCounters(t *testing.T) {
	testRecorder.ObserveTransition(proto.StepNone, proto.StepFollowCheck)
	testRecorder.ObserveTransition(proto.StepNone, proto.StepFollowCheck)
	testRecorder.ObserveFinalize("recorded")
	testRecorder.ObserveRejected(proto.StepName, proto.EventButton)

	assert.Equal(t, float64(2), testutil.ToFloat64(
		testRecorder.transitionsTotal.WithLabelValues("NONE", "FOLLOW_CHECK")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		testRecorder.finalizeTotal.WithLabelValues("recorded")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		testRecorder.rejectedTotal.WithLabelValues("NAME", "button")))
}

// fakePrometheus answers the instant-query API with canned vectors keyed on
// the query string.
func fakePrometheus(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		query := r.Form.Get("query")

		var result string
		switch {
		case query == `sum(intake_transitions_total{from="NONE"})`:
			result = `[{"metric":{},"value":[1693000000,"7"]}]`
		case query == `sum by (outcome) (intake_finalize_total)`:
			result = `[{"metric":{"outcome":"recorded"},"value":[1693000000,"5"]},` +
				`{"metric":{"outcome":"duplicate"},"value":[1693000000,"2"]}]`
		case query == `sum(intake_rejected_events_total)`:
			result = `[{"metric":{},"value":[1693000000,"11"]}]`
		default:
			t.Errorf("unexpected query %q", query)
			result = `[]`
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"success","data":{"resultType":"vector","result":%s}}`, result)
	}))
}

func TestGetFlowTotals(t *testing.T) {
	server := fakePrometheus(t)
	defer server.Close()

	q, err := NewQueryService(server.URL)
	require.NoError(t, err)

	totals, err := q.GetFlowTotals(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(7), totals.Started)
	assert.Equal(t, int64(5), totals.Finalized["recorded"])
	assert.Equal(t, int64(2), totals.Finalized["duplicate"])
	assert.Equal(t, int64(11), totals.RejectedTotal)
}
