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
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/notargets/mfree/InputParameters"
	"github.com/notargets/mfree/geometry2D"
	"github.com/notargets/mfree/model_problems/Elastic2D"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

type ModelElastic struct {
	ICFile     string
	OutputFile string
	Profile    bool
}

// ElasticCmd represents the elastic command
var ElasticCmd = &cobra.Command{
	Use:   "elastic",
	Short: "Plane elastostatic solver on a YAML-described polygonal domain",
	Long:  `Plane elastostatic solver on a YAML-described polygonal domain`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		fmt.Println("elastic called")
		me := &ModelElastic{}
		if me.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		me.OutputFile, _ = cmd.Flags().GetString("output")
		me.Profile, _ = cmd.Flags().GetBool("profile")
		ep := processElasticInput(me)
		RunElastic(me, ep)
	},
}

func processElasticInput(me *ModelElastic) (ep *InputParameters.ElasticityParameters) {
	var (
		err error
	)
	if len(me.ICFile) == 0 {
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "Gravity Column"
Lambda: 1.
Mu: 1.
Gravity: 1.
NodeCount: 500
StencilSize: 20
SolverType: direct # Can be "cg"
Vertices: [[0,0],[1,0],[1,1],[0,1]]
Segments: [[0,1],[1,2],[2,3],[3,0]]
BCs:
  roller: [0, 1, 3]
  free: [2]
Ghosts: [free, roller]
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	data, err := os.ReadFile(me.ICFile)
	if err != nil {
		panic(err)
	}
	ep = &InputParameters.ElasticityParameters{}
	if err = ep.Parse(data); err != nil {
		panic(err)
	}
	return
}

func init() {
	rootCmd.AddCommand(ElasticCmd)
	ElasticCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Lambda, Mu\n\t- boundary polygon and BC groups")
	ElasticCmd.Flags().StringP("output", "o", "solution.csv", "CSV file for the recovered displacement, strain and stress fields")
	ElasticCmd.Flags().Bool("profile", false, "write a CPU profile of the run")
}

func RunElastic(me *ModelElastic, ep *InputParameters.ElasticityParameters) {
	if me.Profile {
		defer profile.Start(profile.CPUProfile).Stop()
	}
	ep.Print()
	b := geometry2D.Boundary{
		Vertices: ep.Vertices,
		Segments: ep.Segments,
		Groups:   ep.BCs,
	}
	l, err := geometry2D.Generate(ep.NodeCount, b, ep.Ghosts, nil)
	if err != nil {
		panic(err)
	}
	st, err := Elastic2D.NewSolverType(ep.SolverType)
	if err != nil {
		panic(err)
	}
	el, err := Elastic2D.NewElastostatic(l,
		Elastic2D.Material{Lambda: ep.Lambda, Mu: ep.Mu},
		ep.StencilSize, ep.Gravity)
	if err != nil {
		panic(err)
	}
	sol, err := el.Run(st)
	if err != nil {
		panic(err)
	}
	if err = writeSolution(me.OutputFile, sol); err != nil {
		panic(err)
	}
	fmt.Printf("wrote %d nodes to %s\n", len(sol.Nodes), me.OutputFile)
}

func writeSolution(fileName string, sol *Elastic2D.Solution) (err error) {
	f, err := os.Create(fileName)
	if err != nil {
		return
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err = w.Write([]string{"x", "y", "ux", "uy", "exx", "eyy", "exy", "sxx", "syy", "sxy"}); err != nil {
		return
	}
	ff := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for i, p := range sol.Nodes {
		rec := []string{
			ff(p[0]), ff(p[1]),
			ff(sol.Ux[i]), ff(sol.Uy[i]),
			ff(sol.Exx[i]), ff(sol.Eyy[i]), ff(sol.Exy[i]),
			ff(sol.Sxx[i]), ff(sol.Syy[i]), ff(sol.Sxy[i]),
		}
		if err = w.Write(rec); err != nil {
			return
		}
	}
	return
}
