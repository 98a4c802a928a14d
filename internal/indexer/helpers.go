package indexer

import (
	"os"
	"sync"
)

// failureCollector accumulates FileFailure values from concurrent workers.
type failureCollector struct {
	mu    sync.Mutex
	items []FileFailure
}

func (f *failureCollector) add(item FileFailure) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, item)
}

func (f *failureCollector) drain() []FileFailure {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
