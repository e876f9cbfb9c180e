// Package shape provides the parametric point-cloud samplers for the particle field.
package shape

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultCount is the number of points generated for every shape.
const DefaultCount = 8000

// ErrUnknownShape is returned by Parse for names that match no shape.
var ErrUnknownShape = errors.New("unknown shape")

// Type identifies one of the available target shapes.
type Type int

const (
	// Heart is a parametric heart curve with depth.
	Heart Type = iota
	// Flower is a five-petal rose curve on a flattened sphere.
	Flower
	// Saturn is a planet body with a tilted ring.
	Saturn
	// Zen is a (2,3) torus knot with volume.
	Zen
	// Fireworks is a solid ball, denser toward the center.
	Fireworks
)

var names = map[Type]string{
	Heart:     "Heart",
	Flower:    "Flower",
	Saturn:    "Saturn",
	Zen:       "Zen",
	Fireworks: "Fireworks",
}

// String returns the display name of the shape.
func (t Type) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// All returns every shape in display order.
func All() []Type {
	return []Type{Heart, Flower, Saturn, Zen, Fireworks}
}

// Parse returns the shape with the given name, ignoring case.
func Parse(name string) (Type, error) {
	for _, t := range All() {
		if strings.EqualFold(names[t], strings.TrimSpace(name)) {
			return t, nil
		}
	}
	return Heart, fmt.Errorf("%w: %q", ErrUnknownShape, name)
}
