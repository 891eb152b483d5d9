package storage

import (
	"context"
	"fmt"
	"sync"

	"liquiplanner/internal/core"
	"liquiplanner/internal/ledger"
)

// Persister stores the whole ledger under a single key of a KV.
//
// Once a Persister has loaded or saved the record, Save only overwrites the
// value it saw last. If another process wrote in between, Save fails with
// ledger.ErrStale and the caller has to reload. KVs implementing Swapper do
// the check atomically; for the others it is a read right before the write.
type Persister struct {
	kv  KV
	key string

	mu     sync.Mutex
	synced bool
	seen   string
	found  bool
}

var _ ledger.Store = (*Persister)(nil)

// NewPersister returns a Persister for key. An empty key means DefaultKey.
func NewPersister(kv KV, key string) *Persister {
	if key == "" {
		key = DefaultKey
	}
	return &Persister{kv: kv, key: key}
}

func (p *Persister) Key() string {
	return p.key
}

func (p *Persister) Save(ctx context.Context, entries []core.Entry) error {
	data, err := Encode(entries)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	value := string(data)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.synced {
		ok, err := p.swap(ctx, value)
		if err != nil {
			return fmt.Errorf("write %q: %w", p.key, err)
		}
		if !ok {
			return fmt.Errorf("write %q: %w", p.key, ledger.ErrStale)
		}
	} else if err := p.kv.Set(ctx, p.key, value); err != nil {
		return fmt.Errorf("write %q: %w", p.key, err)
	}
	p.remember(value, true)
	return nil
}

func (p *Persister) swap(ctx context.Context, value string) (bool, error) {
	if s, ok := p.kv.(Swapper); ok {
		return s.Swap(ctx, p.key, p.seen, p.found, value)
	}
	current, found, err := p.kv.Get(ctx, p.key)
	if err != nil {
		return false, err
	}
	if found != p.found || current != p.seen {
		return false, nil
	}
	return true, p.kv.Set(ctx, p.key, value)
}

func (p *Persister) remember(value string, found bool) {
	p.synced = true
	p.seen = value
	p.found = found
}

func (p *Persister) Load(ctx context.Context) ([]ledger.RawRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	value, found, err := p.kv.Get(ctx, p.key)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", p.key, err)
	}
	p.remember(value, found)
	if !found {
		return nil, nil
	}
	records, err := Decode([]byte(value))
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", p.key, err)
	}
	return records, nil
}
