package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/straptrack/internal/convert"
	"github.com/ajitpratap0/straptrack/pkg/config"
	"github.com/ajitpratap0/straptrack/pkg/logger"
	"github.com/ajitpratap0/straptrack/pkg/strap"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	root := &cobra.Command{
		Use:   "strap2parquet",
		Short: "strap2parquet - STRAP telemetry log to Parquet converter",
		Long: `strap2parquet converts STRAP telemetry logs (whitespace-separated
key/value numeric pairs, optionally tagged with an @strap marker) into sparse,
schema-unified Parquet files. Compressed inputs (.gz, .zst, .zip, .lz4, .s2,
.snappy) are decoded transparently based on the file name.`,
	}

	// Version command
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("strap2parquet v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newConvertCmd())
	root.AddCommand(newColumnsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newConvertCmd() *cobra.Command {
	var inputPath, outputPath, configFile string
	var chunkSize int
	var compression, logLevel string
	var enableMetrics bool

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a STRAP file to Parquet",
		Long: `Convert a STRAP file to a sparse Parquet file with one nullable
Float64 column per discovered field name.

Example:
  strap2parquet convert -i combat.strap.gz -o combat.parquet --chunk-size 1000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}

			// Flags override the config file when explicitly set
			if cmd.Flags().Changed("chunk-size") {
				cfg.ChunkSize = chunkSize
			}
			if cmd.Flags().Changed("compression") {
				cfg.Compression = compression
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Logging.Level = logLevel
			}
			if cmd.Flags().Changed("enable-metrics") {
				cfg.Observability.EnableMetrics = enableMetrics
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if err := logger.Init(logger.Config{
				Level:       cfg.Logging.Level,
				Development: cfg.Logging.Development,
				Encoding:    "console",
			}); err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if outputPath == "" {
				outputPath = inputPath + ".parquet"
			}

			log := logger.With(zap.String("component", "strap2parquet"))

			result, err := convert.Run(inputPath, outputPath, cfg, log)
			if err != nil {
				return fmt.Errorf("conversion failed: %w", err)
			}

			fmt.Printf("Converted %s to %s in %s\n",
				result.InputPath, result.OutputPath, result.Duration)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input STRAP file path (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output Parquet file path (default: <input>.parquet)")
	_ = cmd.MarkFlagRequired("input")

	cmd.Flags().StringVar(&configFile, "config", "", "Path to YAML configuration file (optional)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", config.DefaultChunkSize, "Records per column batch. Only trades memory footprint against write-call count")
	cmd.Flags().StringVar(&compression, "compression", "snappy", "Parquet compression codec (snappy, gzip, zstd, none)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&enableMetrics, "enable-metrics", false, "Enable Prometheus metrics collection")

	return cmd
}

func newColumnsCmd() *cobra.Command {
	var inputPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "columns",
		Short: "Print the discovered column schema of a STRAP file",
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := strap.NewTrack(inputPath)
			if err != nil {
				return err
			}

			columns, err := track.ColumnNames()
			if err != nil {
				return fmt.Errorf("schema discovery failed: %w", err)
			}

			if asJSON {
				data, err := json.Marshal(columns)
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Println(strings.Join(columns, "\n"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input STRAP file path (required)")
	_ = cmd.MarkFlagRequired("input")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the schema as a JSON array")

	return cmd
}

// loadConfig loads a ConvertConfig from a YAML file, or defaults.
func loadConfig(path string) (*config.ConvertConfig, error) {
	cfg := config.NewConvertConfig()
	if path == "" {
		return cfg, nil
	}
	if err := config.Load(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}
