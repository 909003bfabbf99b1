package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/philipparndt/edgeframe/internal/loader"
	"github.com/philipparndt/edgeframe/version"
)

var (
	verbose       bool
	weldTolerance float64

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "edgeframe",
	Short: "Compute per-edge frames of triangle meshes",
	Long: `edgeframe loads STL (or OpenSCAD) triangle meshes, orients their halfedges
and computes a unit direction vector for every edge, plus the in-plane
perpendicular of every halfedge, for use by discrete differential geometry tools.`,
	Version:       version.GetFullVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().Float64Var(&weldTolerance, "weld", 0, "Merge triangle corners closer than this distance (0 = exact match)")
}

// newLogger logs warnings only, unless verbose is set
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func load(ctx context.Context, path string) (*loader.Result, error) {
	return loader.Load(ctx, path, loader.Options{
		WeldTolerance: weldTolerance,
		Logger:        logger,
	})
}

// writeFile creates path and passes it to write. A failed Close is reported
// as well, since it can mean the data never reached the disk.
func writeFile(path string, write func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	return write(file)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
