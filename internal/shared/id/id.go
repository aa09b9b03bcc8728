// Package id generates the identifiers sheetguard attaches to repair tasks
// and harvest payloads.
//
// IDs are prefixed ULIDs ("repair_01J...", "harvest_01J..."): sortable by
// creation time, and the prefix keeps them readable in logs.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RepairID identifies one repair task of the stylesheet evaluator
type RepairID string

// PayloadID identifies one harvest payload
type PayloadID string

const (
	RepairPrefix  = "repair"
	PayloadPrefix = "harvest"
)

// Generator generates ULIDs. Safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator whose IDs are strictly increasing within
// the same millisecond.
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(ulid.Monotonic(rand.Reader, 0))
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source,
// for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a "prefix_ULID" string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewRepairID generates a repair task ID
func NewRepairID() RepairID {
	return RepairID(Default().GenerateWithPrefix(RepairPrefix))
}

// NewPayloadID generates a harvest payload ID
func NewPayloadID() PayloadID {
	return PayloadID(Default().GenerateWithPrefix(PayloadPrefix))
}

func (id RepairID) String() string  { return string(id) }
func (id PayloadID) String() string { return string(id) }

// Timestamp extracts the creation time from a prefixed or bare ULID.
func Timestamp(s string) (time.Time, error) {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	parsed, err := ulid.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
