package livetree

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is an in-process tree with the same contract as Redis.
type Memory struct {
	mu        sync.Mutex
	nodes     map[string]map[string]json.RawMessage
	watchers  map[*memWatcher]struct{}
	updateErr error
}

type memWatcher struct {
	notify chan struct{}
	fail   chan error
}

func NewMemory() *Memory {
	return &Memory{
		nodes:    map[string]map[string]json.RawMessage{},
		watchers: map[*memWatcher]struct{}{},
	}
}

func (m *Memory) Snapshot(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Memory) snapshotLocked() (Snapshot, error) {
	snap := make(Snapshot, len(m.nodes))
	for k, fields := range m.nodes {
		b, err := json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		snap[k] = b
	}
	return snap, nil
}

func (m *Memory) Watch(ctx context.Context, fn func(Snapshot)) error {
	w := &memWatcher{notify: make(chan struct{}, 1), fail: make(chan error, 1)}
	m.mu.Lock()
	m.watchers[w] = struct{}{}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.watchers, w)
		m.mu.Unlock()
	}()

	emit := func() error {
		snap, err := m.Snapshot(ctx)
		if err != nil {
			return err
		}
		fn(snap)
		return nil
	}
	if err := emit(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.fail:
			return err
		case <-w.notify:
			if err := emit(); err != nil {
				return err
			}
		}
	}
}

func (m *Memory) Update(ctx context.Context, key string, fields map[string]any) error {
	if !validKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	enc, err := encodeFields(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	node, ok := m.nodes[key]
	if !ok {
		node = map[string]json.RawMessage{}
		m.nodes[key] = node
	}
	for f, v := range enc {
		node[f] = v
	}
	m.notifyLocked()
	return nil
}

// Put replaces the whole node at key.
func (m *Memory) Put(ctx context.Context, key string, fields map[string]any) error {
	if !validKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	enc, err := encodeFields(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[key] = enc
	m.notifyLocked()
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.nodes, key)
	m.notifyLocked()
	return nil
}

// FailUpdates makes every following Update return err (nil restores).
func (m *Memory) FailUpdates(err error) {
	m.mu.Lock()
	m.updateErr = err
	m.mu.Unlock()
}

// Disconnect ends every active Watch with err.
func (m *Memory) Disconnect(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for w := range m.watchers {
		select {
		case w.fail <- err:
		default:
		}
	}
}

func (m *Memory) notifyLocked() {
	for w := range m.watchers {
		select {
		case w.notify <- struct{}{}:
		default:
		}
	}
}
