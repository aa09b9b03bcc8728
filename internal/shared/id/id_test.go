package id

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
	if id1.Compare(id2) >= 0 {
		t.Errorf("IDs should increase: %s then %s", id1, id2)
	}
}

func TestTypedIDs(t *testing.T) {
	ids := map[string]string{
		RepairPrefix:  NewRepairID().String(),
		PayloadPrefix: NewPayloadID().String(),
	}

	for prefix, id := range ids {
		parts := strings.Split(id, "_")
		if len(parts) != 2 {
			t.Fatalf("ID should have format 'prefix_ulid', got: %s", id)
		}
		if parts[0] != prefix {
			t.Errorf("Expected prefix '%s', got '%s' in ID: %s", prefix, parts[0], id)
		}
		if _, err := ulid.Parse(parts[1]); err != nil {
			t.Errorf("ULID part should be valid: %s", parts[1])
		}
	}
}

func TestTimestamp(t *testing.T) {
	before := time.Now()
	id := NewRepairID()
	after := time.Now()

	ts, err := Timestamp(id.String())
	if err != nil {
		t.Fatalf("Failed to extract timestamp: %v", err)
	}

	// millisecond precision
	if ts.UnixMilli() < before.UnixMilli() || ts.UnixMilli() > after.UnixMilli() {
		t.Errorf("Timestamp %v should be between %v and %v", ts, before, after)
	}

	if _, err := Timestamp("repair_not-a-ulid"); err == nil {
		t.Error("Expected error for invalid ULID")
	}
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()

	const goroutines = 50
	const perGoroutine = 100

	var mu sync.Mutex
	var all []string
	var wg sync.WaitGroup

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perGoroutine)
			for j := 0; j < perGoroutine; j++ {
				local = append(local, gen.Generate().String())
			}
			mu.Lock()
			all = append(all, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	seen := make(map[string]bool, len(all))
	for _, id := range all {
		if seen[id] {
			t.Fatalf("Duplicate ID found: %s", id)
		}
		seen[id] = true
	}
}
