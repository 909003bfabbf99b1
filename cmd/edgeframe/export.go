package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/philipparndt/edgeframe/pkg/stl"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the welded mesh as a binary STL file",
	Long: `Load the input (STL or OpenSCAD), weld it with --weld and write the indexed
mesh back as binary STL. Face normals are recomputed from the welded vertices.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "welded.stl", "Output STL file")
}

func runExport(cmd *cobra.Command, args []string) error {
	res, err := load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	model := stl.NewModel(res.Name)
	for f := range res.Mesh.Faces {
		model.AddTriangle(res.Mesh.Triangle(f))
	}

	err = writeFile(exportOutput, func(w io.Writer) error {
		return stl.WriteBinary(w, model)
	})
	if err != nil {
		return err
	}

	logger.Info("mesh exported", zap.String("file", exportOutput), zap.Int("faces", model.TriangleCount()))
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d faces to %s\n", model.TriangleCount(), exportOutput)
	return nil
}
