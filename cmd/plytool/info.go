package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tetrahedral/plymesh/pkg/geom"
	"github.com/tetrahedral/plymesh/pkg/ply"
)

var infoCmd = &cobra.Command{
	Use:   "info <file.ply>",
	Short: "Show mesh structure",
	Long:  "Show the byte order, counts and attribute layout of a PLY file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := ply.OpenFile(args[0], decodeOptions())
		if err != nil {
			return err
		}

		order := "big-endian"
		if doc.LittleEndian() {
			order = "little-endian"
		}
		fmt.Printf("%s: %s, %d vertices, %d faces\n",
			args[0], order, doc.VertexCount(), doc.FaceCount())

		fmt.Println("vertex attributes:")
		for _, a := range doc.VertexAttributes() {
			name := a.Role.String()
			if a.Role == ply.RoleCustom {
				name = a.Name
			}
			fmt.Printf("  %-20s %-10s offset %d\n", name, a.Format, a.Offset)
		}
		if n := doc.FaceAttributeCount(); n > 0 {
			fmt.Printf("face attributes: %d\n", n)
		}

		mesh, err := doc.DecodeMesh()
		if err != nil {
			return err
		}
		fmt.Printf("decodes to %d triangles, %d vertices (%s indices)\n",
			mesh.TriangleCount(), mesh.VertexCount, mesh.IndexType)

		if pos := mesh.FindAttribute(ply.RolePosition); pos != nil && pos.Format.Type == ply.TypeFloat32 {
			bounds, area := measure(mesh, pos)
			fmt.Printf("bounds min [%g %g %g] max [%g %g %g], surface area %g\n",
				bounds.Min.X, bounds.Min.Y, bounds.Min.Z,
				bounds.Max.X, bounds.Max.Y, bounds.Max.Z, area)
		}

		return nil
	},
}

// measure computes the bounding box and total surface area of a mesh
// with float positions.
func measure(mesh *ply.Mesh, pos *ply.Attribute) (geom.Bounds, float32) {
	at := func(i int) geom.Vec3 {
		return geom.Vec3{
			X: mesh.Float32At(pos, i, 0),
			Y: mesh.Float32At(pos, i, 1),
			Z: mesh.Float32At(pos, i, 2),
		}
	}

	bounds := geom.EmptyBounds()
	for i := 0; i < mesh.VertexCount; i++ {
		bounds = bounds.Extend(at(i))
	}

	var area float32
	for t := 0; t < mesh.TriangleCount(); t++ {
		area += geom.TriangleArea(
			at(int(mesh.Index(3*t))),
			at(int(mesh.Index(3*t+1))),
			at(int(mesh.Index(3*t+2))))
	}
	return bounds, area
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
