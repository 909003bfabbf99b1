package main

import (
	"fmt"
	"image/png"
	"io"
	"math"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/philipparndt/edgeframe/pkg/edgevec"
	"github.com/philipparndt/edgeframe/pkg/render"
)

var (
	renderOutput        string
	renderWidth         int
	renderHeight        int
	renderAzimuth       float64
	renderElevation     float64
	renderPerpendicular bool
	renderNormals       string
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render the mesh and its edge frames to a PNG image",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "frames.png", "Output PNG file")
	renderCmd.Flags().IntVar(&renderWidth, "width", 800, "Image width in pixels")
	renderCmd.Flags().IntVar(&renderHeight, "height", 600, "Image height in pixels")
	renderCmd.Flags().Float64Var(&renderAzimuth, "azimuth", 30, "Camera azimuth in degrees")
	renderCmd.Flags().Float64Var(&renderElevation, "elevation", 22.5, "Camera elevation in degrees")
	renderCmd.Flags().BoolVarP(&renderPerpendicular, "perpendicular", "p", true, "Draw per-halfedge perpendicular vectors")
	renderCmd.Flags().StringVar(&renderNormals, "normals", "face", "Normal used for perpendiculars: face or edge")
}

func runRender(cmd *cobra.Command, args []string) error {
	if renderWidth <= 0 || renderHeight <= 0 {
		return fmt.Errorf("invalid image size %dx%d", renderWidth, renderHeight)
	}
	mode, err := parseNormalMode(renderNormals)
	if err != nil {
		return err
	}

	res, err := load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	in := res.Input()
	par, perp, err := edgevec.Frames(nil, nil, in, edgevec.Options{
		ComputePerpendicular: renderPerpendicular,
		Normals:              mode,
	})
	if err != nil {
		return err
	}
	if !renderPerpendicular {
		perp = nil
	}

	opts := render.DefaultOptions()
	opts.Width, opts.Height = renderWidth, renderHeight
	opts.Azimuth = renderAzimuth * math.Pi / 180
	opts.Elevation = renderElevation * math.Pi / 180
	img := render.Render(in, par, perp, opts)

	err = writeFile(renderOutput, func(w io.Writer) error {
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("failed to encode PNG: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("image written", zap.String("file", renderOutput), zap.Int("edges", len(par)))
	fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d edges to %s\n", len(par), renderOutput)
	return nil
}
