// Package seeders holds the demo data loaded by `sampleapp seed`.
//
// Define a seeder in any file in this package:
//
//	func init() {
//	    seeders.Register("users", seedUsers)
//	}
package seeders

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shashiranjanraj/sampleapp/app/repositories"
)

// SeederFunc is the signature for a seed function.
type SeederFunc func(ctx context.Context, set *repositories.Set) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

// Register adds a seeder to the global registry.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// RunAll executes every registered seeder in registration order.
// It stops on the first error.
func RunAll(ctx context.Context, set *repositories.Set, log *slog.Logger) error {
	mu.Lock()
	current := make([]seederEntry, len(entries))
	copy(current, entries)
	mu.Unlock()

	for _, e := range current {
		if err := e.fn(ctx, set); err != nil {
			log.Error("seeder failed", "seeder", e.name, "error", err)
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
		log.Info("seeder done", "seeder", e.name)
	}
	return nil
}
