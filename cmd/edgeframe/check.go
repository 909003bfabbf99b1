package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philipparndt/edgeframe/pkg/analysis"
	"github.com/philipparndt/edgeframe/pkg/edgevec"
)

var (
	checkTolerance float64
	checkMaxIssues int
)

var errCheckFailed = errors.New("edge frame check failed")

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Verify the edge frames of a mesh",
	Long: `Compute edge frames and verify that every edge vector is unit length, that
both halfedges of interior edges agree on it, and that every perpendicular is a
unit vector orthogonal to its edge.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Float64Var(&checkTolerance, "tolerance", 1e-9, "Maximum allowed numeric error")
	checkCmd.Flags().IntVarP(&checkMaxIssues, "count", "n", 10, "Number of issues to display")
}

func runCheck(cmd *cobra.Command, args []string) error {
	res, err := load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	in := res.Input()
	par, perp, err := edgevec.Frames(nil, nil, in, edgevec.Options{ComputePerpendicular: true})
	if err != nil {
		return err
	}
	report := analysis.AnalyzeFrames(in, par, perp, checkTolerance)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Edge Frame Check")
	fmt.Fprintln(out, "================")
	fmt.Fprintf(out, "Edges: %d (%d interior, %d boundary)\n", report.EdgeCount, report.InteriorEdges, report.BoundaryEdges)
	fmt.Fprintf(out, "Halfedges: %d\n", report.HalfedgeCount)
	fmt.Fprintf(out, "Degenerate edges: %d\n", report.DegenerateEdges)
	fmt.Fprintf(out, "Degenerate faces: %d\n", report.DegenerateFaces)
	fmt.Fprintf(out, "Max unit length error: %.3e\n", report.MaxUnitError)
	fmt.Fprintf(out, "Max orthogonality error: %.3e\n", report.MaxOrthogonality)
	fmt.Fprintf(out, "Max halfedge spread: %.3e\n", report.MaxInteriorSpread)

	if report.OK() {
		fmt.Fprintln(out, "\nOK")
		return nil
	}

	fmt.Fprintf(out, "\n%d issue(s) above tolerance %.3e:\n", len(report.Issues), report.Tolerance)
	for i, issue := range report.Issues {
		if i == checkMaxIssues {
			fmt.Fprintf(out, "  ... %d more\n", len(report.Issues)-i)
			break
		}
		if issue.Face < 0 {
			fmt.Fprintf(out, "  edge %d: %s (%.3e)\n", issue.Edge, issue.Reason, issue.Value)
		} else {
			fmt.Fprintf(out, "  edge %d halfedge (%d,%d): %s (%.3e)\n", issue.Edge, issue.Face, issue.Slot, issue.Reason, issue.Value)
		}
	}
	return errCheckFailed
}
