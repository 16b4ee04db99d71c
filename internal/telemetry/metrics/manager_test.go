package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager(t *testing.T) {
	manager, reg := NewTestManagerAndRegistry()
	require.NotNil(t, manager)

	manager.CounterRuns.Inc()
	manager.CounterRuns.Inc()
	manager.CounterWorkouts.Inc()
	manager.GaugeLifeSignal.Set(1)

	metricFamilies, err := reg.Gather()
	require.NoError(t, err)

	byName := map[string]*dto.MetricFamily{}
	for _, mf := range metricFamilies {
		byName[mf.GetName()] = mf
	}

	runsFamily, ok := byName["backend_test_server_runs"]
	require.True(t, ok)
	require.Len(t, runsFamily.GetMetric(), 1)
	assert.Equal(t, float64(2), runsFamily.GetMetric()[0].GetCounter().GetValue())

	workoutsFamily, ok := byName["backend_test_server_workouts"]
	require.True(t, ok)
	assert.Equal(t, float64(1), workoutsFamily.GetMetric()[0].GetCounter().GetValue())

	lifeSignalFamily, ok := byName["backend_test_server_life_signal"]
	require.True(t, ok)
	assert.Equal(t, float64(1), lifeSignalFamily.GetMetric()[0].GetGauge().GetValue())
}

func TestSetupPrometheus(t *testing.T) {
	reg := SetupPrometheus()
	require.NotNil(t, reg)

	metricFamilies, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, metricFamilies)
}
