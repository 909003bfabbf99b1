package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/philipparndt/edgeframe/pkg/edgevec"
	"github.com/philipparndt/edgeframe/pkg/geometry"
	"github.com/philipparndt/edgeframe/pkg/watcher"
)

var (
	vecPerpendicular bool
	vecNormals       string
	vecFormat        string
	vecOutput        string
	vecWorkers       int
	vecWatch         bool
)

var vectorsCmd = &cobra.Command{
	Use:   "vectors [file]",
	Short: "Compute and export edge vectors",
	Long: `Compute the unit vector of every edge along its canonical direction and,
with --perpendicular, the unit vector of every halfedge that lies in its face
plane, is perpendicular to the edge and points away from the face.`,
	Args: cobra.ExactArgs(1),
	RunE: runVectors,
}

func init() {
	rootCmd.AddCommand(vectorsCmd)

	vectorsCmd.Flags().BoolVarP(&vecPerpendicular, "perpendicular", "p", false, "Also compute per-halfedge perpendicular vectors")
	vectorsCmd.Flags().StringVar(&vecNormals, "normals", "face", "Normal used for perpendiculars: face or edge")
	vectorsCmd.Flags().StringVarP(&vecFormat, "format", "f", "csv", "Output format: csv or json")
	vectorsCmd.Flags().StringVarP(&vecOutput, "output", "o", "", "Write to file instead of stdout")
	vectorsCmd.Flags().IntVarP(&vecWorkers, "workers", "w", runtime.GOMAXPROCS(0), "Number of worker goroutines")
	vectorsCmd.Flags().BoolVar(&vecWatch, "watch", false, "Recompute whenever the input file changes")
}

func parseNormalMode(s string) (edgevec.NormalMode, error) {
	switch s {
	case "face":
		return edgevec.FaceNormals, nil
	case "edge":
		return edgevec.EdgeNormals, nil
	default:
		return 0, fmt.Errorf("unknown normal mode %q (expected face or edge)", s)
	}
}

func runVectors(cmd *cobra.Command, args []string) error {
	mode, err := parseNormalMode(vecNormals)
	if err != nil {
		return err
	}
	if vecFormat != "csv" && vecFormat != "json" {
		return fmt.Errorf("unknown format %q (expected csv or json)", vecFormat)
	}

	opts := edgevec.Options{
		ComputePerpendicular: vecPerpendicular,
		Normals:              mode,
		Workers:              vecWorkers,
	}

	deps, err := exportVectors(cmd, args[0], opts)
	if err != nil {
		return err
	}
	if !vecWatch {
		return nil
	}
	return watchAndExport(cmd.Context(), cmd, args[0], deps, opts)
}

// exportVectors runs one load-compute-write cycle and returns the files the
// result depends on
func exportVectors(cmd *cobra.Command, path string, opts edgevec.Options) ([]string, error) {
	res, err := load(cmd.Context(), path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	par, perp, err := edgevec.Frames(nil, nil, res.Input(), opts)
	if err != nil {
		return nil, err
	}
	logger.Info("edge vectors computed",
		zap.Int("edges", len(par)),
		zap.Bool("perpendicular", opts.ComputePerpendicular),
		zap.Stringer("normals", opts.Normals),
		zap.Duration("elapsed", time.Since(start)))

	if !opts.ComputePerpendicular {
		perp = nil
	}

	write := func(out io.Writer) error {
		var err error
		switch vecFormat {
		case "json":
			err = writeJSON(out, res.Orientation.Endpoints, par, perp, res.Input().Edges)
		default:
			err = writeCSV(out, par, perp, res.Input().Edges)
		}
		if err != nil {
			return fmt.Errorf("failed to write vectors: %w", err)
		}
		return nil
	}

	if vecOutput == "" {
		err = write(cmd.OutOrStdout())
	} else {
		err = writeFile(vecOutput, write)
	}
	if err != nil {
		return nil, err
	}
	return res.Dependencies, nil
}

func watchAndExport(ctx context.Context, cmd *cobra.Command, path string, deps []string, opts edgevec.Options) error {
	fw, err := watcher.NewFileWatcher(500*time.Millisecond, logger)
	if err != nil {
		return err
	}
	defer fw.Close()

	changed := make(chan string, 1)
	if err := fw.Watch(deps, func(file string) {
		select {
		case changed <- file:
		default:
		}
	}); err != nil {
		return err
	}
	go fw.Run(ctx)

	logger.Info("watching for changes", zap.Strings("files", deps))
	for {
		select {
		case <-ctx.Done():
			return nil
		case file := <-changed:
			logger.Info("recomputing", zap.String("changed", file))
			if _, err := exportVectors(cmd, path, opts); err != nil {
				logger.Error("recompute failed", zap.Error(err))
			}
		}
	}
}

func writeCSV(w io.Writer, par []geometry.Vector3, perp [][3]geometry.Vector3, edges [][3]int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"kind", "edge", "face", "slot", "x", "y", "z"}); err != nil {
		return err
	}

	for e, v := range par {
		if err := cw.Write(vectorRecord("parallel", e, "", "", v)); err != nil {
			return err
		}
	}
	for f, row := range perp {
		for i, v := range row {
			rec := vectorRecord("perpendicular", edges[f][i], strconv.Itoa(f), strconv.Itoa(i), v)
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func vectorRecord(kind string, edge int, face, slot string, v geometry.Vector3) []string {
	return []string{
		kind,
		strconv.Itoa(edge),
		face,
		slot,
		strconv.FormatFloat(v.X, 'g', -1, 64),
		strconv.FormatFloat(v.Y, 'g', -1, 64),
		strconv.FormatFloat(v.Z, 'g', -1, 64),
	}
}

type jsonEdge struct {
	ID     int        `json:"id"`
	From   int        `json:"from"`
	To     int        `json:"to"`
	Vector [3]float64 `json:"vector"`
}

type jsonHalfedge struct {
	Face          int        `json:"face"`
	Slot          int        `json:"slot"`
	Edge          int        `json:"edge"`
	Perpendicular [3]float64 `json:"perpendicular"`
}

type jsonFrames struct {
	Edges     []jsonEdge     `json:"edges"`
	Halfedges []jsonHalfedge `json:"halfedges,omitempty"`
}

func writeJSON(w io.Writer, endpoints [][2]int, par []geometry.Vector3, perp [][3]geometry.Vector3, edges [][3]int) error {
	doc := jsonFrames{Edges: make([]jsonEdge, len(par))}
	for e, v := range par {
		doc.Edges[e] = jsonEdge{ID: e, From: endpoints[e][0], To: endpoints[e][1], Vector: [3]float64{v.X, v.Y, v.Z}}
	}
	for f, row := range perp {
		for i, v := range row {
			doc.Halfedges = append(doc.Halfedges, jsonHalfedge{
				Face:          f,
				Slot:          i,
				Edge:          edges[f][i],
				Perpendicular: [3]float64{v.X, v.Y, v.Z},
			})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
