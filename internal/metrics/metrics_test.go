package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, r *Recorder, name, label, value string) float64 {
	t.Helper()
	families, err := r.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestRecorderCounts(t *testing.T) {
	r := New()
	r.Processed("APPROVE")
	r.Processed("APPROVE")
	r.Processed("REJECT")
	r.StageError("extract")
	r.FraudLevel("HIGH")

	assert.Equal(t, 2.0, counterValue(t, r, "claims_processed_total", "decision", "APPROVE"))
	assert.Equal(t, 1.0, counterValue(t, r, "claims_processed_total", "decision", "REJECT"))
	assert.Equal(t, 1.0, counterValue(t, r, "claims_errors_total", "stage", "extract"))
	assert.Equal(t, 1.0, counterValue(t, r, "claims_fraud_level_total", "level", "HIGH"))
}

func TestRecorderHistograms(t *testing.T) {
	r := New()
	r.ObserveStage("validate", 20*time.Millisecond)
	r.ObserveStage("validate", 40*time.Millisecond)
	r.ObserveTotal(time.Second)

	families, err := r.Registry().Gather()
	require.NoError(t, err)

	var stageCount, totalCount uint64
	for _, mf := range families {
		switch mf.GetName() {
		case "claims_stage_duration_seconds":
			stageCount = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		case "claims_total_duration_seconds":
			totalCount = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(2), stageCount)
	assert.Equal(t, uint64(1), totalCount)
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.Processed("APPROVE")
	r.StageError("fraud")
	r.FraudLevel("LOW")
	r.ObserveStage("fraud", time.Millisecond)
	r.ObserveTotal(time.Millisecond)
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.Processed("MANUAL_REVIEW")

	path := filepath.Join(t.TempDir(), "claims.prom")
	require.NoError(t, r.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), `claims_processed_total{decision="MANUAL_REVIEW"} 1`))
}
