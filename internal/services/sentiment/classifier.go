// Package sentiment scores article batches through an external classifier
// process. The classifier is a separately trained model reached over a CLI
// request/response boundary; this package owns lazy training, the untrained
// retry and process-lifetime metric caching.
package sentiment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tickerpulse/internal/common"
	"github.com/ternarybob/tickerpulse/internal/interfaces"
	"github.com/ternarybob/tickerpulse/internal/models"
)

// ErrNotTrained is returned by Predict and Metrics when the classifier
// reports it has no trained model.
var ErrNotTrained = errors.New("classifier model not trained")

// ProcessClassifier shells out to the Python classifier script. Each call is
// one short-lived process invocation; model state lives in files next to the
// script.
type ProcessClassifier struct {
	pythonBin      string
	scriptPath     string
	workDir        string
	requestTimeout time.Duration
	trainTimeout   time.Duration
	logger         arbor.ILogger
}

func NewProcessClassifier(config common.SentimentConfig, logger arbor.ILogger) *ProcessClassifier {
	return &ProcessClassifier{
		pythonBin:      config.PythonBin,
		scriptPath:     config.ScriptPath,
		workDir:        filepath.Dir(config.ScriptPath),
		requestTimeout: config.RequestTimeout.Std(),
		trainTimeout:   config.TrainTimeout.Std(),
		logger:         logger,
	}
}

type metricsPayload struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
}

func (p *metricsPayload) toModel() *models.ClassifierMetrics {
	return &models.ClassifierMetrics{
		Accuracy:  p.Accuracy,
		Precision: p.Precision,
		Recall:    p.Recall,
		F1:        p.F1,
	}
}

type trainResponse struct {
	Success bool            `json:"success"`
	Metrics *metricsPayload `json:"metrics"`
	Error   string          `json:"error"`
}

type predictResponse struct {
	Sentiment           string  `json:"sentiment"`
	Confidence          float64 `json:"confidence"`
	ProbabilityNegative float64 `json:"probability_negative"`
	ProbabilityNeutral  float64 `json:"probability_neutral"`
	ProbabilityPositive float64 `json:"probability_positive"`
	Error               string  `json:"error"`
}

// Train runs the classifier's training pass and returns the resulting
// metrics.
func (c *ProcessClassifier) Train(ctx context.Context) (*models.ClassifierMetrics, error) {
	output, err := c.run(ctx, c.trainTimeout, "train")
	if err != nil {
		return nil, fmt.Errorf("train classifier: %w", err)
	}

	var resp trainResponse
	if err := json.Unmarshal(output, &resp); err != nil {
		return nil, fmt.Errorf("decode train response: %w", err)
	}
	if !resp.Success || resp.Metrics == nil {
		return nil, fmt.Errorf("classifier training failed: %s", resp.Error)
	}

	c.logger.Info().
		Float64("accuracy", resp.Metrics.Accuracy).
		Float64("f1", resp.Metrics.F1).
		Msg("Sentiment classifier trained")

	return resp.Metrics.toModel(), nil
}

// Predict scores a batch of texts. Texts are passed base64-encoded to keep
// the argument shell-safe.
func (c *ProcessClassifier) Predict(ctx context.Context, texts []string) (*models.SentimentVerdict, error) {
	payload, err := json.Marshal(texts)
	if err != nil {
		return nil, fmt.Errorf("encode texts: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(payload)

	output, err := c.run(ctx, c.requestTimeout, "predict_base64", encoded)
	if err != nil {
		return nil, fmt.Errorf("predict sentiment: %w", err)
	}

	var resp predictResponse
	if err := json.Unmarshal(output, &resp); err != nil {
		return nil, fmt.Errorf("decode predict response: %w", err)
	}
	if resp.Error != "" {
		if isUntrained(resp.Error) {
			return nil, ErrNotTrained
		}
		return nil, fmt.Errorf("classifier predict failed: %s", resp.Error)
	}

	return &models.SentimentVerdict{
		Sentiment:    resp.Sentiment,
		Confidence:   resp.Confidence,
		ProbNegative: resp.ProbabilityNegative,
		ProbNeutral:  resp.ProbabilityNeutral,
		ProbPositive: resp.ProbabilityPositive,
	}, nil
}

// Metrics fetches the classifier's stored evaluation metrics.
func (c *ProcessClassifier) Metrics(ctx context.Context) (*models.ClassifierMetrics, error) {
	output, err := c.run(ctx, c.requestTimeout, "metrics")
	if err != nil {
		return nil, fmt.Errorf("fetch classifier metrics: %w", err)
	}

	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(output, &errResp); err == nil && errResp.Error != "" {
		if isUntrained(errResp.Error) {
			return nil, ErrNotTrained
		}
		return nil, fmt.Errorf("classifier metrics failed: %s", errResp.Error)
	}

	var payload metricsPayload
	if err := json.Unmarshal(output, &payload); err != nil {
		return nil, fmt.Errorf("decode metrics response: %w", err)
	}
	return payload.toModel(), nil
}

func (c *ProcessClassifier) run(ctx context.Context, timeout time.Duration, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmdArgs := append([]string{c.scriptPath}, args...)
	cmd := exec.CommandContext(ctx, c.pythonBin, cmdArgs...)
	cmd.Dir = c.workDir

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%s %s: %w: %s", c.pythonBin, args[0], err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s %s: %w", c.pythonBin, args[0], err)
	}
	return output, nil
}

func isUntrained(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "not trained") || strings.Contains(m, "train model first")
}

var _ interfaces.Classifier = (*ProcessClassifier)(nil)
