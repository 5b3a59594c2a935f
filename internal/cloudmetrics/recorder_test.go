package cloudmetrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturingPusher struct {
	pushed *prometheus.Registry
}

func (p *capturingPusher) Push(_ context.Context, registry *prometheus.Registry) error {
	p.pushed = registry
	return nil
}

func TestPushShipsRegistrySnapshot(t *testing.T) {
	pusher := &capturingPusher{}
	c := New(nil, pusher, "1.2.3", zap.NewNop())
	c.SetOrganizationsTotal(7)
	c.SetUsersTotal(42)

	require.NoError(t, c.Push(context.Background()))
	require.NotNil(t, pusher.pushed)

	families, err := pusher.pushed.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, fam := range families {
		for _, m := range fam.GetMetric() {
			if m.GetGauge() != nil {
				values[fam.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	assert.Equal(t, float64(7), values["hintboard_organizations_total"])
	assert.Equal(t, float64(42), values["hintboard_users_total"])
	assert.Contains(t, values, "hintboard_instance_uptime_seconds")
	assert.Equal(t, float64(1), values["hintboard_instance_info"])
}

func TestPushWithoutPusherFails(t *testing.T) {
	c := New(nil, nil, "dev", zap.NewNop())
	assert.Error(t, c.Push(context.Background()))
}

func TestBuildRemoteWriteSeriesSkipsNonScalarFamilies(t *testing.T) {
	reg := prometheus.NewRegistry()
	hist := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "test_hist"})
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_gauge"})
	reg.MustRegister(hist, gauge)
	gauge.Set(3)
	hist.Observe(1)

	families, err := reg.Gather()
	require.NoError(t, err)

	series := buildRemoteWriteSeries(families, 1000)
	require.Len(t, series, 1)
	assert.Equal(t, "__name__", series[0].Labels[0].Name)
	assert.Equal(t, "test_gauge", series[0].Labels[0].Value)
	assert.Equal(t, float64(3), series[0].Samples[0].Value)
}
