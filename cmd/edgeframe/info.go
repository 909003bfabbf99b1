package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philipparndt/edgeframe/pkg/analysis"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display mesh and edge statistics",
	Long:  "Show vertex, face and edge counts, boundary edges, surface area and bounding box of the welded mesh.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	res, err := load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	m, o := res.Mesh, res.Orientation
	bbox := m.BoundingBox()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Mesh Information")
	fmt.Fprintln(out, "================")
	if res.Name != "" {
		fmt.Fprintf(out, "Name: %s\n", res.Name)
	}
	fmt.Fprintf(out, "File: %s\n\n", res.Source)

	fmt.Fprintln(out, "Topology:")
	fmt.Fprintf(out, "  Vertices: %d\n", len(m.Vertices))
	fmt.Fprintf(out, "  Faces: %d\n", len(m.Faces))
	fmt.Fprintf(out, "  Edges: %d\n", o.NumEdges())
	fmt.Fprintf(out, "  Boundary edges: %d\n", len(o.BoundaryEdges()))
	fmt.Fprintf(out, "  Euler characteristic: %d\n\n", len(m.Vertices)-o.NumEdges()+len(m.Faces))

	fmt.Fprintln(out, "Geometry:")
	fmt.Fprintf(out, "  Surface Area: %.6f square units\n", m.SurfaceArea())
	fmt.Fprintf(out, "  Min: %s\n", analysis.FormatVector(bbox.Min))
	fmt.Fprintf(out, "  Max: %s\n", analysis.FormatVector(bbox.Max))
	fmt.Fprintf(out, "  Diagonal: %.6f units\n", bbox.Diagonal())
	return nil
}
