package Elastic2D

import (
	"fmt"
	"math"
)

type BCFLAG uint8

const (
	BC_Free BCFLAG = iota
	BC_Roller
)

var BCNameMap = map[string]BCFLAG{
	"free":   BC_Free,
	"roller": BC_Roller,
}

func NewBCFlag(name string) (flag BCFLAG, err error) {
	flag, ok := BCNameMap[name]
	if !ok {
		err = fmt.Errorf("unknown boundary condition group %q", name)
	}
	return
}

const unitTol = 1.e-9

// FindOrthogonals returns, for each unit normal n = (n0, n1), the unit
// in-plane orthogonal t = normalize(-(n0+n1)+n0, n0), i.e. (-n1, n0) up to
// normalization. These are the directions along which the roller condition
// imposes zero traction. Inputs must already be unit length.
func FindOrthogonals(normals [][2]float64) (tangents [][2]float64, err error) {
	tangents = make([][2]float64, len(normals))
	for i, n := range normals {
		if math.Abs(math.Hypot(n[0], n[1])-1) > unitTol {
			err = fmt.Errorf("%w: normal %d is not unit length", ErrShapeMismatch, i)
			return nil, err
		}
		tx := -(n[0] + n[1]) + n[0]
		ty := n[0]
		L := math.Hypot(tx, ty)
		tangents[i] = [2]float64{tx / L, ty / L}
	}
	return
}
