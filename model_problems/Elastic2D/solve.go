package Elastic2D

import (
	"fmt"
	"strings"

	"github.com/notargets/mfree/linsolve"
)

type SolverType uint8

const (
	Direct SolverType = iota
	CG
)

var (
	SolverNames = []string{"direct", "cg"}
)

func NewSolverType(label string) (st SolverType, err error) {
	label = strings.ToLower(strings.TrimSpace(label))
	for i, name := range SolverNames {
		if label == name {
			st = SolverType(i)
			return
		}
	}
	err = fmt.Errorf("unknown solver type %q", label)
	return
}

func (st SolverType) String() string {
	if int(st) >= len(SolverNames) {
		return "unknown"
	}
	return SolverNames[st]
}

// Solve factors or iterates the assembled system and returns the stacked
// displacement vector [u_x; u_y] of length 2N.
func (sys *System) Solve(st SolverType) (u []float64, err error) {
	switch st {
	case Direct:
		u, err = linsolve.SolveDirect(sys.G, sys.B)
	case CG:
		u, err = linsolve.SolveCG(sys.G, sys.B)
	default:
		err = fmt.Errorf("unknown solver type %d", st)
	}
	return
}
