// Package shading holds the per-vertex attribute sink and the color mapping
// used to display it.
package shading

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pthm-cable/tubedensity/density"
)

// ErrOutOfRange is returned when a published value falls outside [0,1].
var ErrOutOfRange = errors.New("shading: value outside [0,1]")

// Attribute is a named per-vertex float attribute. It stores the most
// recently published frame and is safe to read from a render goroutine
// while the update loop publishes.
type Attribute struct {
	name string

	mu        sync.RWMutex
	values    []float64
	published int
}

// NewAttribute creates an attribute for a mesh with m vertices.
func NewAttribute(name string, m int) *Attribute {
	return &Attribute{name: name, values: make([]float64, m)}
}

// Name returns the attribute name.
func (a *Attribute) Name() string {
	return a.name
}

// Publish replaces the stored values. The frame is rejected as a whole if
// its length differs from the mesh or any value is outside [0,1].
func (a *Attribute) Publish(values []float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(values) != len(a.values) {
		return &density.ShapeMismatchError{Input: "vertices", Want: len(a.values), Got: len(values)}
	}
	for i, v := range values {
		if !(v >= 0 && v <= 1) {
			return fmt.Errorf("%w: %s[%d] = %g", ErrOutOfRange, a.name, i, v)
		}
	}
	copy(a.values, values)
	a.published++
	return nil
}

// Snapshot copies the current values into dst and returns it.
func (a *Attribute) Snapshot(dst []float64) []float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append(dst[:0], a.values...)
}

// Value returns the value at vertex i.
func (a *Attribute) Value(i int) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.values[i]
}

// Len returns the vertex count.
func (a *Attribute) Len() int {
	return len(a.values)
}

// Published returns how many frames have been accepted.
func (a *Attribute) Published() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.published
}
