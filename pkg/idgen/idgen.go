// Package idgen hands out monotonically increasing 64-bit identifiers for
// call sites that need sortable surrogate keys.
package idgen

import (
	"errors"
	"fmt"

	"github.com/sony/sonyflake"
)

// Generator wraps a Sonyflake instance. Identifiers are unique per machine
// and strictly increasing over time.
type Generator struct {
	sf *sonyflake.Sonyflake
}

// New builds a generator with default settings (machine ID derived from the
// private IP address).
func New() (*Generator, error) {
	sf := sonyflake.NewSonyflake(sonyflake.Settings{})
	if sf == nil {
		return nil, errors.New("idgen: sonyflake initialization failed")
	}
	return &Generator{sf: sf}, nil
}

// NextID returns the next identifier.
func (g *Generator) NextID() (int64, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return 0, fmt.Errorf("idgen: next id: %w", err)
	}
	return int64(id), nil
}
