package sim

import (
	"strconv"
	"sync/atomic"
)

// IDGenerator generates unique IDs for events.
type IDGenerator interface {
	Generate() string
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	return strconv.FormatUint(idNumber, 10)
}

var idGenerator = &sequentialIDGenerator{}

// GetIDGenerator returns the ID generator used in the current simulation.
func GetIDGenerator() IDGenerator {
	return idGenerator
}
