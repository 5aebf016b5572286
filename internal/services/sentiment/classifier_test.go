package sentiment

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/tickerpulse/internal/common"
)

// writeStubScript drops a shell script that answers the classifier protocol
// with canned JSON, so the exec boundary can be exercised without Python.
func writeStubScript(t *testing.T, body string) common.SentimentConfig {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "classifier.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return common.SentimentConfig{
		PythonBin:      "/bin/sh",
		ScriptPath:     path,
		RequestTimeout: common.Duration(2 * time.Second),
		TrainTimeout:   common.Duration(2 * time.Second),
	}
}

func TestProcessClassifier_TrainDecodesMetrics(t *testing.T) {
	config := writeStubScript(t, `echo '{"success": true, "metrics": {"accuracy": 0.9149, "precision": 0.8823, "recall": 0.8641, "f1_score": 0.8702}}'`)
	classifier := NewProcessClassifier(config, common.GetLogger())

	metrics, err := classifier.Train(context.Background())

	require.NoError(t, err)
	assert.InDelta(t, 0.9149, metrics.Accuracy, 1e-9)
	assert.InDelta(t, 0.8702, metrics.F1, 1e-9)
}

func TestProcessClassifier_PredictMapsVerdict(t *testing.T) {
	config := writeStubScript(t, `echo '{"sentiment": "negative", "confidence": 0.71, "probability_negative": 0.71, "probability_neutral": 0.2, "probability_positive": 0.09}'`)
	classifier := NewProcessClassifier(config, common.GetLogger())

	verdict, err := classifier.Predict(context.Background(), []string{"Shares slump on weak guidance"})

	require.NoError(t, err)
	assert.Equal(t, "negative", verdict.Sentiment)
	assert.InDelta(t, 0.71, verdict.Confidence, 1e-9)
	assert.InDelta(t, 0.09, verdict.ProbPositive, 1e-9)
}

func TestProcessClassifier_PredictUntrainedIsSentinel(t *testing.T) {
	config := writeStubScript(t, `echo '{"error": "Model not trained. Run train first."}'`)
	classifier := NewProcessClassifier(config, common.GetLogger())

	_, err := classifier.Predict(context.Background(), []string{"anything"})

	assert.ErrorIs(t, err, ErrNotTrained)
}

func TestProcessClassifier_MetricsUntrainedIsSentinel(t *testing.T) {
	config := writeStubScript(t, `echo '{"error": "No metrics available. Train model first."}'`)
	classifier := NewProcessClassifier(config, common.GetLogger())

	_, err := classifier.Metrics(context.Background())

	assert.ErrorIs(t, err, ErrNotTrained)
}

func TestProcessClassifier_ScriptFailureSurfacesStderr(t *testing.T) {
	config := writeStubScript(t, `echo "boom" >&2; exit 3`)
	classifier := NewProcessClassifier(config, common.GetLogger())

	_, err := classifier.Train(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
