package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tetrahedral/plymesh/pkg/ply"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.ply>...",
	Short: "Check that files decode cleanly",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			if err := validateFile(path); err != nil {
				failed++
				fmt.Printf("%s: %v\n", path, err)
				continue
			}
			fmt.Printf("%s: ok\n", path)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed validation", failed, len(args))
		}
		return nil
	},
}

func validateFile(path string) error {
	doc, err := ply.OpenFile(path, decodeOptions())
	if err != nil {
		return err
	}
	mesh, err := doc.DecodeMesh()
	if err != nil {
		return err
	}
	log.Debug("validated",
		zap.String("file", path),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Int("vertices", mesh.VertexCount))
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
