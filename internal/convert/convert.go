// Package convert orchestrates one STRAP-to-Parquet conversion for the
// CLI: it wires the track, configuration, logging, and metrics together
// and reports a run summary.
package convert

import (
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/straptrack/pkg/config"
	"github.com/ajitpratap0/straptrack/pkg/strap"
)

// Result summarizes a completed conversion.
type Result struct {
	InputPath  string
	OutputPath string
	Duration   time.Duration
}

// Run converts inputPath into a Parquet file at outputPath.
func Run(inputPath, outputPath string, cfg *config.ConvertConfig, log *zap.Logger) (*Result, error) {
	if cfg == nil {
		cfg = config.NewConvertConfig()
	}

	track, err := strap.NewTrack(inputPath)
	if err != nil {
		return nil, err
	}

	log.Info("starting conversion",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Int("chunk_size", cfg.ChunkSize),
		zap.Bool("permissive", track.Permissive()))

	start := time.Now()

	if err := track.ToParquet(outputPath, cfg); err != nil {
		return nil, err
	}

	result := &Result{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Duration:   time.Since(start),
	}

	log.Info("conversion completed", zap.Duration("duration", result.Duration))

	return result, nil
}
