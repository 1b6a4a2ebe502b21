package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type ElasticityParameters struct {
	Title       string           `yaml:"Title"`
	Lambda      float64          `yaml:"Lambda"`
	Mu          float64          `yaml:"Mu"`
	Gravity     float64          `yaml:"Gravity"`
	NodeCount   int              `yaml:"NodeCount"`
	StencilSize int              `yaml:"StencilSize"`
	SolverType  string           `yaml:"SolverType"`
	BCs         map[string][]int `yaml:"BCs"`      // BC name -> boundary segment indices
	Vertices    [][2]float64     `yaml:"Vertices"` // boundary polygon, CCW
	Segments    [][2]int         `yaml:"Segments"`
	Ghosts      []string         `yaml:"Ghosts"` // BC names that get ghost nodes
}

func (ep *ElasticityParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ep); err != nil {
		return err
	}
	if ep.NodeCount <= 0 {
		ep.NodeCount = 500
	}
	if ep.StencilSize <= 0 {
		ep.StencilSize = 20
	}
	if ep.SolverType == "" {
		ep.SolverType = "direct"
	}
	if len(ep.Vertices) < 3 {
		return fmt.Errorf("boundary polygon needs at least 3 vertices, have %d", len(ep.Vertices))
	}
	return nil
}

func (ep *ElasticityParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ep.Title)
	fmt.Printf("%8.5f\t\t= Lambda\n", ep.Lambda)
	fmt.Printf("%8.5f\t\t= Mu\n", ep.Mu)
	fmt.Printf("%8.5f\t\t= Gravity\n", ep.Gravity)
	fmt.Printf("[%d]\t\t\t= Node Count\n", ep.NodeCount)
	fmt.Printf("[%d]\t\t\t= Stencil Size\n", ep.StencilSize)
	fmt.Printf("[%s]\t\t= Solver Type\n", ep.SolverType)
	keys := make([]string, len(ep.BCs))
	i := 0
	for k := range ep.BCs {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %v\n", key, ep.BCs[key])
	}
}
