package sim

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator hands out unique IDs for tasks, progress bars and other items
// that need to be told apart in traces.
type IDGenerator interface {
	Generate() string
}

var idGen struct {
	sync.Mutex
	gen    IDGenerator
	locked bool
}

// UseSequentialIDGenerator makes IDs deterministic: 1, 2, 3, ... This is the
// default. It must be called before the first ID is generated.
func UseSequentialIDGenerator() {
	setIDGenerator(&sequentialIDGenerator{})
}

// UseParallelIDGenerator makes IDs globally unique (xid) instead of
// sequential. Runs are no longer reproducible ID-wise. It must be called
// before the first ID is generated.
func UseParallelIDGenerator() {
	setIDGenerator(parallelIDGenerator{})
}

func setIDGenerator(g IDGenerator) {
	idGen.Lock()
	defer idGen.Unlock()

	if idGen.locked {
		log.Panic("cannot change id generator type after using it")
	}

	idGen.gen = g
	idGen.locked = true
}

// GetIDGenerator returns the ID generator of the process.
func GetIDGenerator() IDGenerator {
	idGen.Lock()
	defer idGen.Unlock()

	if idGen.gen == nil {
		idGen.gen = &sequentialIDGenerator{}
	}

	idGen.locked = true

	return idGen.gen
}

type sequentialIDGenerator struct {
	next atomic.Uint64
}

func (g *sequentialIDGenerator) Generate() string {
	return strconv.FormatUint(g.next.Add(1), 10)
}

type parallelIDGenerator struct{}

func (parallelIDGenerator) Generate() string {
	return xid.New().String()
}
