package cmd

import (
	"testing"

	"github.com/magiconair/properties/assert"
	"github.com/notargets/mfree/InputParameters"
)

func TestElasticInput(t *testing.T) {
	var (
		err error
	)
	fileInput := []byte(`
Title: Gravity Column
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
`)
	var input InputParameters.ElasticityParameters
	if err = input.Parse(fileInput); err != nil {
		panic(err)
	}
	// Rollers are the bottom and both sides
	assert.Equal(t, input.BCs["roller"], []int{0, 1, 3})
	// The free surface is the top segment
	assert.Equal(t, input.BCs["free"], []int{2})
	input.Print()
	assert.Equal(t, input.Gravity, 1.)
	assert.Equal(t, len(input.Vertices), 4)
}

func TestTopoBoundary(t *testing.T) {
	b := topoBoundary(1.0, 2.0)
	// Every segment must belong to exactly one group.
	owned := 0
	for _, segs := range b.Groups {
		owned += len(segs)
	}
	assert.Equal(t, owned, len(b.Segments))
	// The ridge crest sits at amplitude above the flanks.
	var crest float64
	for _, v := range b.Vertices {
		if v[1] > crest {
			crest = v[1]
		}
	}
	assert.Equal(t, crest, 1.0)
}
