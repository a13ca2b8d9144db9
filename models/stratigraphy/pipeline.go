package stratigraphy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/labelkit/labelkit/config"
)

// predictionsFile is the name of the pipeline output inside the temp mount.
const predictionsFile = "predictions.json"

// Runner invokes the external layer-extraction pipeline and decodes its
// predictions output. With an empty pipeline command it only reads a
// previously produced predictions file, which keeps deployments without the
// pipeline binary (and tests) working against precomputed results.
type Runner struct {
	command     []string
	groundTruth string
	outDir      string
	logger      *zap.Logger
}

func NewRunner(cfg config.IConfig, logger *zap.Logger) (*Runner, error) {
	command, err := cfg.PipelineCommand()
	if err != nil {
		return nil, fmt.Errorf("read pipeline command: %w", err)
	}
	validationDir, err := cfg.ValidationDir()
	if err != nil {
		return nil, fmt.Errorf("read validation dir: %w", err)
	}
	tempDir, err := cfg.TempDir()
	if err != nil {
		return nil, fmt.Errorf("read temp dir: %w", err)
	}
	return &Runner{
		command:     command,
		groundTruth: filepath.Join(validationDir, "ground_truth.json"),
		outDir:      tempDir,
		logger:      logger,
	}, nil
}

// Run extracts layer predictions for the given document and returns the
// decoded predictions of all processed documents.
func (r *Runner) Run(ctx context.Context, pdfPath string) (Document, error) {
	predictionsPath := filepath.Join(r.outDir, predictionsFile)

	if len(r.command) > 0 {
		if err := r.execute(ctx, pdfPath, predictionsPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(predictionsPath)
	if err != nil {
		return nil, fmt.Errorf("read predictions: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode predictions: %w", err)
	}
	return doc, nil
}

func (r *Runner) execute(ctx context.Context, pdfPath, predictionsPath string) error {
	args := append(append([]string{}, r.command[1:]...),
		"--input", pdfPath,
		"--ground-truth", r.groundTruth,
		"--out", r.outDir,
		"--predictions", predictionsPath,
		"--skip-draw-predictions",
	)

	r.logger.Info("Running extraction pipeline",
		zap.String("binary", r.command[0]),
		zap.String("input", pdfPath))

	cmd := exec.CommandContext(ctx, r.command[0], args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pipeline failed: %w: %s", err, stderr.String())
	}
	return nil
}
