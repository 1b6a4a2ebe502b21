/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"math"

	"github.com/notargets/mfree/geometry2D"
	"github.com/notargets/mfree/model_problems/Elastic2D"
	"github.com/notargets/mfree/utils"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

type ModelTopo struct {
	Nodes       int
	StencilSize int
	Amplitude   float64
	Width       float64
	Lambda, Mu  float64
	Gravity     float64
	Solver      string
	OutputFile  string
	Profile     bool
}

// TopoCmd represents the topo command
var TopoCmd = &cobra.Command{
	Use:   "topo",
	Short: "Gravity-driven stresses under a Gaussian topographic ridge",
	Long: `
Solves for the displacement, strain and stress fields in a crustal
cross-section loaded by gravity, with a Gaussian ridge on the free
surface and rollers on the sides and bottom,

mfree topo -a 1.0 -w 2.0`,
	Run: func(cmd *cobra.Command, args []string) {
		mt := &ModelTopo{}
		fmt.Println("topo called")
		mt.Nodes, _ = cmd.Flags().GetInt("nodes")
		mt.StencilSize, _ = cmd.Flags().GetInt("stencilSize")
		mt.Amplitude, _ = cmd.Flags().GetFloat64("amplitude")
		mt.Width, _ = cmd.Flags().GetFloat64("width")
		mt.Lambda, _ = cmd.Flags().GetFloat64("lambda")
		mt.Mu, _ = cmd.Flags().GetFloat64("mu")
		mt.Gravity, _ = cmd.Flags().GetFloat64("gravity")
		mt.Solver, _ = cmd.Flags().GetString("solver")
		mt.OutputFile, _ = cmd.Flags().GetString("output")
		mt.Profile, _ = cmd.Flags().GetBool("profile")
		RunTopo(mt)
	},
}

func init() {
	rootCmd.AddCommand(TopoCmd)
	TopoCmd.Flags().IntP("nodes", "n", 1000, "target number of non-ghost nodes")
	TopoCmd.Flags().IntP("stencilSize", "s", 20, "nodes per RBF-FD stencil")
	TopoCmd.Flags().Float64P("amplitude", "a", 1.0, "ridge height")
	TopoCmd.Flags().Float64P("width", "w", 2.0, "ridge width parameter")
	TopoCmd.Flags().Float64("lambda", 1.0, "first Lame parameter")
	TopoCmd.Flags().Float64("mu", 1.0, "shear modulus")
	TopoCmd.Flags().Float64("gravity", 1.0, "body load magnitude")
	TopoCmd.Flags().String("solver", "direct", "linear solver: direct or cg")
	TopoCmd.Flags().StringP("output", "o", "topo.csv", "CSV file for the recovered fields")
	TopoCmd.Flags().Bool("profile", false, "write a CPU profile of the run")
}

// topoBoundary builds the CCW cross-section polygon: flat bottom, vertical
// sides, and a Gaussian ridge sampled along the top. The top segments form
// the free group; bottom and sides are rollers.
func topoBoundary(a, w float64) geometry2D.Boundary {
	const (
		halfWidth  = 10.0
		depth      = 5.0
		topSamples = 40
	)
	ridge := func(x float64) float64 {
		return a * math.Exp(-(x/w)*(x/w))
	}
	var (
		verts [][2]float64
		segs  [][2]int
	)
	verts = append(verts,
		[2]float64{-halfWidth, -depth},
		[2]float64{halfWidth, -depth},
	)
	// Top vertices right to left to keep the winding counterclockwise.
	for _, x := range utils.Linspace(halfWidth, -halfWidth, topSamples+1) {
		verts = append(verts, [2]float64{x, ridge(x)})
	}
	var (
		firstTop = 2
		lastTop  = 2 + topSamples
		free     []int
	)
	segs = append(segs, [2]int{0, 1})        // bottom
	segs = append(segs, [2]int{1, firstTop}) // right
	for i := firstTop; i < lastTop; i++ {
		free = append(free, len(segs))
		segs = append(segs, [2]int{i, i + 1})
	}
	segs = append(segs, [2]int{lastTop, 0}) // left
	return geometry2D.Boundary{
		Vertices: verts,
		Segments: segs,
		Groups: map[string][]int{
			"roller": {0, 1, len(segs) - 1},
			"free":   free,
		},
	}
}

func RunTopo(mt *ModelTopo) {
	if mt.Profile {
		defer profile.Start(profile.CPUProfile).Stop()
	}
	b := topoBoundary(mt.Amplitude, mt.Width)
	l, err := geometry2D.Generate(mt.Nodes, b, []string{"free", "roller"}, nil)
	if err != nil {
		panic(err)
	}
	st, err := Elastic2D.NewSolverType(mt.Solver)
	if err != nil {
		panic(err)
	}
	el, err := Elastic2D.NewElastostatic(l,
		Elastic2D.Material{Lambda: mt.Lambda, Mu: mt.Mu},
		mt.StencilSize, mt.Gravity)
	if err != nil {
		panic(err)
	}
	sol, err := el.Run(st)
	if err != nil {
		panic(err)
	}
	if err = writeSolution(mt.OutputFile, sol); err != nil {
		panic(err)
	}
	fmt.Printf("wrote %d nodes to %s\n", len(sol.Nodes), mt.OutputFile)
}
