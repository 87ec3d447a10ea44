package sessions

import (
	"encoding/json"
	"log"
	"sync"
)

// Viewer is one live consumer of the board (a websocket client).
type Viewer struct {
	Send chan []byte
}

// Board holds the last delivered record set and pushes every new one to viewers.
type Board struct {
	mu      sync.RWMutex
	records []ViewRecord
	frame   []byte
	err     error
	viewers map[*Viewer]struct{}
}

func NewBoard() *Board {
	return &Board{
		records: []ViewRecord{},
		viewers: map[*Viewer]struct{}{},
	}
}

// Frame is the message pushed to viewers.
type Frame struct {
	Users []ViewRecord `json:"users"`
	Error string       `json:"error,omitempty"`
}

// Update replaces the record set; it is the projector's onUpdate callback.
func (b *Board) Update(records []ViewRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setLocked(records, nil)
}

// Fail marks the board as disconnected, keeping the last records.
func (b *Board) Fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setLocked(b.records, err)
}

func (b *Board) setLocked(records []ViewRecord, err error) {
	f := Frame{Users: records}
	if err != nil {
		f.Error = err.Error()
	}
	msg, merr := json.Marshal(f)
	if merr != nil {
		log.Printf("sessions: encode board: %v", merr)
		return
	}
	b.records = records
	b.err = err
	b.frame = msg
	for v := range b.viewers {
		select {
		case v.Send <- msg:
		default: // slow viewer drops the frame, the next one is a full set anyway
		}
	}
}

// Records returns the last delivered set and the feed error, if any.
func (b *Board) Records() ([]ViewRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.records, b.err
}

func (b *Board) Find(userID string) (ViewRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, r := range b.records {
		if r.UserID == userID {
			return r, true
		}
	}
	return ViewRecord{}, false
}

// Join registers a viewer and queues the current frame for it.
func (b *Board) Join(buf int) *Viewer {
	if buf < 1 {
		buf = 1
	}
	v := &Viewer{Send: make(chan []byte, buf)}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.viewers[v] = struct{}{}
	if b.frame != nil {
		v.Send <- b.frame
	}
	return v
}

func (b *Board) Leave(v *Viewer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.viewers[v]; ok {
		delete(b.viewers, v)
		close(v.Send)
	}
}
