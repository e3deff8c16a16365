// Package reduce defines the reduction methods used when a window of
// per-tick values is collapsed into a single exchanged or recorded value.
package reduce

import (
	"errors"
	"fmt"
)

// ErrUnknownMethod is returned when a method name matches no known alias.
var ErrUnknownMethod = errors.New("unknown reduction method")

// A Method selects how a window of values is reduced.
type Method int

// The supported reduction methods.
const (
	Mean Method = iota
	Sum
	Point
	Minimum
	Maximum
)

var methodNames = map[Method]string{
	Mean:    "mean",
	Sum:     "sum",
	Point:   "point",
	Minimum: "minimum",
	Maximum: "maximum",
}

var methodAliases = map[string]Method{
	"mean":          Mean,
	"average":       Mean,
	"sum":           Sum,
	"cumulative":    Sum,
	"point":         Point,
	"instantaneous": Point,
	"minimum":       Minimum,
	"min":           Minimum,
	"maximum":       Maximum,
	"max":           Maximum,
}

// ParseMethod resolves a method name or alias to its Method. Resolution
// happens once at setup; unknown names abort construction.
func ParseMethod(name string) (Method, error) {
	m, ok := methodAliases[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}

	return m, nil
}

func (m Method) String() string {
	name, ok := methodNames[m]
	if !ok {
		return fmt.Sprintf("Method(%d)", int(m))
	}

	return name
}
