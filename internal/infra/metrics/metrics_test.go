package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolMetrics_ObserveCountsByOutcome(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewToolMetrics(reg)

	m.Observe("get-document-metadata", "success", 20*time.Millisecond)
	m.Observe("get-document-metadata", "success", 30*time.Millisecond)
	m.Observe("get-document-metadata", "backend_error", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.callsTotal.WithLabelValues("get-document-metadata", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.callsTotal.WithLabelValues("get-document-metadata", "backend_error")))

	expected := `
# HELP wccmcp_tool_calls_total Total number of tool invocations by tool and outcome
# TYPE wccmcp_tool_calls_total counter
wccmcp_tool_calls_total{outcome="backend_error",tool="get-document-metadata"} 1
wccmcp_tool_calls_total{outcome="success",tool="get-document-metadata"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "wccmcp_tool_calls_total"))
}

func TestToolMetrics_InFlight(t *testing.T) {
	t.Parallel()

	m := NewToolMetrics(prometheus.NewRegistry())

	done := m.Start()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
}
