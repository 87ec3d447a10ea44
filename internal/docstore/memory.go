package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type memCollection struct {
	order []string
	docs  map[string][]byte
}

// Memory keeps documents in insertion order.
type Memory struct {
	mu      sync.Mutex
	colls   map[string]*memCollection
	listErr error
}

func NewMemory() *Memory {
	return &Memory{colls: map[string]*memCollection{}}
}

// FailList makes List return err until called again with nil.
func (m *Memory) FailList(err error) {
	m.mu.Lock()
	m.listErr = err
	m.mu.Unlock()
}

func (m *Memory) coll(name string) *memCollection {
	c, ok := m.colls[name]
	if !ok {
		c = &memCollection{docs: map[string][]byte{}}
		m.colls[name] = c
	}
	return c
}

func (m *Memory) List(ctx context.Context, collection string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	c := m.coll(collection)
	out := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		data, err := decodeObject(c.docs[id])
		if err != nil {
			return nil, fmt.Errorf("list %s: document %s: %w", collection, id, err)
		}
		out = append(out, Document{ID: id, Data: data})
	}
	return out, nil
}

func (m *Memory) Get(ctx context.Context, collection, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.coll(collection).docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	data, err := decodeObject(raw)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Data: data}, nil
}

func (m *Memory) Add(ctx context.Context, collection string, data any) (string, error) {
	id := uuid.NewString()
	if err := m.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (m *Memory) Set(ctx context.Context, collection, id string, data any) error {
	b, err := fields(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(collection)
	if _, ok := c.docs[id]; !ok {
		c.order = append(c.order, id)
	}
	c.docs[id] = b
	return nil
}

// SetRaw stores a JSON document as-is, without validation.
func (m *Memory) SetRaw(collection, id string, raw json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(collection)
	if _, ok := c.docs[id]; !ok {
		c.order = append(c.order, id)
	}
	c.docs[id] = raw
}

func (m *Memory) Update(ctx context.Context, collection, id string, fieldsIn map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(collection)
	raw, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	cur, err := decodeObject(raw)
	if err != nil {
		return err
	}
	for k, v := range fieldsIn {
		cur[k] = v
	}
	b, err := fields(cur)
	if err != nil {
		return err
	}
	c.docs[id] = b
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(collection)
	if _, ok := c.docs[id]; !ok {
		return ErrNotFound
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}
