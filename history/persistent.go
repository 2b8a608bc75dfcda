package history

import (
	"fmt"
	"log"
)

// Persistent is a Memory whose accepted lines are also written to a Store.
// A nil store keeps everything in memory.
type Persistent struct {
	*Memory
	store Store
}

// NewPersistent loads the newest limit lines from store into memory
func NewPersistent(store Store, limit int) (*Persistent, error) {
	p := &Persistent{Memory: NewMemory(limit), store: store}
	if store == nil {
		return p, nil
	}

	lines, err := store.Load(limit)
	if err != nil {
		return nil, fmt.Errorf("history: load: %w", err)
	}
	for _, l := range lines {
		p.Append(l)
	}
	return p, nil
}

// Commit records an accepted line. Store failures are logged and the
// in-memory history is left as it is.
func (p *Persistent) Commit(line string) {
	if p.store == nil {
		return
	}
	if err := p.store.Add(line); err != nil {
		log.Printf("history: commit: %v", err)
	}
}

func (p *Persistent) Close() error {
	if p.store == nil {
		return nil
	}
	return p.store.Close()
}
