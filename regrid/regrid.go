// Package regrid declares the spatial remapping collaborator used when the
// two sides of an exchange live on different grids. The remapping itself is
// external; this engine only routes values through it.
package regrid

import "github.com/esmlab/coupler/reduce"

// A Grid describes a spatial grid just precisely enough for routing: a name
// identifying the geometry and the number of cells in a field on it.
type Grid struct {
	Name string
	Size int
}

// Equal reports whether two descriptors name the same grid.
func (g Grid) Equal(o Grid) bool {
	return g.Name == o.Name
}

// A Regridder resamples a field from one grid onto another. Implementations
// are opaque to the engine and assumed conservative where the method
// requires it.
type Regridder interface {
	Regrid(src, dst Grid, method reduce.Method, values []float64) (
		[]float64, error)
}
