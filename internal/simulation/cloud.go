package simulation

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Ellipse is the one-sigma covariance ellipse of a particle cloud.
type Ellipse struct {
	Center orb.Point
	Major  float64 // standard deviation along the principal axis
	Minor  float64 // standard deviation across it
	Angle  float64 // direction of the principal axis, in [0, π)
}

// CloudEllipse runs a principal component analysis over the particle
// positions. At least two poses are needed.
func CloudEllipse(poses []Pose) (Ellipse, error) {
	if len(poses) < 2 {
		return Ellipse{}, fmt.Errorf("need at least 2 poses for a covariance ellipse, got %d", len(poses))
	}

	// Samples as rows, coordinates as columns.
	data := make([]float64, 2*len(poses))
	var cx, cy float64
	for i, p := range poses {
		data[2*i] = p.X
		data[2*i+1] = p.Y
		cx += p.X
		cy += p.Y
	}
	n := float64(len(poses))
	matrix := mat.NewDense(len(poses), 2, data)

	var pc stat.PC
	if ok := pc.PrincipalComponents(matrix, nil); !ok {
		return Ellipse{}, fmt.Errorf("PCA computation failed")
	}

	vars := pc.VarsTo(nil)
	var vec mat.Dense
	pc.VectorsTo(&vec)

	angle := math.Atan2(vec.At(1, 0), vec.At(0, 0))
	if angle < 0 {
		angle += math.Pi
	}
	if angle >= math.Pi {
		angle -= math.Pi
	}

	return Ellipse{
		Center: orb.Point{cx / n, cy / n},
		Major:  math.Sqrt(math.Max(vars[0], 0)),
		Minor:  math.Sqrt(math.Max(vars[1], 0)),
		Angle:  angle,
	}, nil
}
