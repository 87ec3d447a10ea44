package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("document not found")

// Document is one record of a collection; ID is assigned by the store or the caller.
type Document struct {
	ID   string
	Data map[string]any
}

// Decode copies the document's fields into out (a pointer to a tagged struct).
func (d Document) Decode(out any) error {
	b, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("document %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("document %s: %w", d.ID, err)
	}
	return nil
}

// Store is a collection-oriented document database.
type Store interface {
	// List reads a whole collection once, in the store's iteration order.
	List(ctx context.Context, collection string) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	// Add stores data under a new store-assigned id.
	Add(ctx context.Context, collection string, data any) (string, error)
	// Set creates or fully replaces the document at id.
	Set(ctx context.Context, collection, id string, data any) error
	// Update merges fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
}

// fields renders data (struct or map) as a JSON object.
func fields(data any) ([]byte, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 || b[0] != '{' {
		return nil, fmt.Errorf("document data must be an object, got %s", b)
	}
	return b, nil
}

// decodeObject parses a JSON object keeping numbers exact.
func decodeObject(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}
