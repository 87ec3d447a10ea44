package sessions

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/phampho1103/UITPAY-Web/internal/docstore"
	"github.com/phampho1103/UITPAY-Web/internal/livetree"
)

// ProfileCollection holds one profile document per app user.
const ProfileCollection = "user"

// FieldChecked is the only session field this service writes.
const FieldChecked = "isChecked"

// ProductSnapshot is the copy of a product taken when it was added to the session.
type ProductSnapshot struct {
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	ProductImage string          `json:"productImage"`
}

// Session is the checkout state the mobile app keeps under /{userid}.
type Session struct {
	IsBuying   bool                       `json:"isBuying"`
	IsPaid     bool                       `json:"isPaid"`
	IsChecked  bool                       `json:"isChecked"`
	Timestamp  int64                      `json:"timestamp"`
	Quantity   int                        `json:"quantity"`
	TotalPrice decimal.Decimal            `json:"totalprice"`
	Products   map[string]ProductSnapshot `json:"products,omitempty"`
}

// wireSession accepts both spellings of the total and detects missing flags.
type wireSession struct {
	IsBuying      *bool                      `json:"isBuying"`
	IsPaid        *bool                      `json:"isPaid"`
	IsChecked     bool                       `json:"isChecked"`
	Timestamp     int64                      `json:"timestamp"`
	Quantity      int                        `json:"quantity"`
	TotalPrice    *decimal.Decimal           `json:"totalprice"`
	TotalPriceAlt *decimal.Decimal           `json:"totalPrice"`
	Products      map[string]ProductSnapshot `json:"products"`
}

var ErrMalformed = errors.New("malformed record")

func DecodeSession(raw json.RawMessage) (Session, error) {
	var w wireSession
	if err := json.Unmarshal(raw, &w); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if w.IsBuying == nil {
		return Session{}, fmt.Errorf("%w: missing isBuying", ErrMalformed)
	}
	if w.IsPaid == nil {
		return Session{}, fmt.Errorf("%w: missing isPaid", ErrMalformed)
	}
	s := Session{
		IsBuying:  *w.IsBuying,
		IsPaid:    *w.IsPaid,
		IsChecked: w.IsChecked,
		Timestamp: w.Timestamp,
		Quantity:  w.Quantity,
		Products:  w.Products,
	}
	switch {
	case w.TotalPrice != nil:
		s.TotalPrice = *w.TotalPrice
	case w.TotalPriceAlt != nil:
		s.TotalPrice = *w.TotalPriceAlt
	}
	if s.TotalPrice.IsNegative() {
		return Session{}, fmt.Errorf("%w: negative total", ErrMalformed)
	}
	if s.Quantity < 0 {
		return Session{}, fmt.Errorf("%w: negative quantity", ErrMalformed)
	}
	return s, nil
}

// DecodeSnapshot decodes every node of a tree snapshot. Nodes that are not
// valid sessions are reported in skipped and left out.
func DecodeSnapshot(snap livetree.Snapshot) (sessions map[string]Session, skipped map[string]error) {
	sessions = make(map[string]Session, len(snap))
	for key, raw := range snap {
		s, err := DecodeSession(raw)
		if err != nil {
			if skipped == nil {
				skipped = map[string]error{}
			}
			skipped[key] = err
			continue
		}
		sessions[key] = s
	}
	return sessions, skipped
}

// Profile is a document of the user collection. UserID is a field of the
// document, not its store id.
type Profile struct {
	UserID    string          `json:"userid"`
	Name      string          `json:"name"`
	UserImage string          `json:"userimage"`
	Sotien    decimal.Decimal `json:"sotien"`
}

func DecodeProfiles(docs []docstore.Document) ([]Profile, error) {
	out := make([]Profile, 0, len(docs))
	for _, d := range docs {
		var p Profile
		if err := d.Decode(&p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if p.UserID == "" {
			return nil, fmt.Errorf("%w: profile %s has no userid", ErrMalformed, d.ID)
		}
		out = append(out, p)
	}
	return out, nil
}

type Status struct {
	IsBuying bool `json:"isBuying"`
	IsPaid   bool `json:"isPaid"`
}

// ViewRecord is an active customer as shown on the dashboard.
type ViewRecord struct {
	UserID     string                     `json:"userid"`
	Name       string                     `json:"name"`
	UserImage  string                     `json:"userImage"`
	Sotien     decimal.Decimal            `json:"sotien"`
	Status     Status                     `json:"status"`
	Timestamp  int64                      `json:"timestamp"`
	Quantity   int                        `json:"quantity"`
	TotalPrice decimal.Decimal            `json:"totalprice"`
	IsChecked  bool                       `json:"isChecked"`
	Products   map[string]ProductSnapshot `json:"products,omitempty"`
}

// CanRecheck mirrors the disabled state of the recheck action.
func (v ViewRecord) CanRecheck() bool { return !v.Status.IsBuying }

func newViewRecord(p Profile, s Session) ViewRecord {
	return ViewRecord{
		UserID:     p.UserID,
		Name:       p.Name,
		UserImage:  p.UserImage,
		Sotien:     p.Sotien,
		Status:     Status{IsBuying: s.IsBuying, IsPaid: s.IsPaid},
		Timestamp:  s.Timestamp,
		Quantity:   s.Quantity,
		TotalPrice: s.TotalPrice,
		IsChecked:  s.IsChecked,
		Products:   s.Products,
	}
}

// Join pairs every profile with the session stored under its userid, in
// profile order. Profiles without a session and sessions without a profile
// are left out.
func Join(sessions map[string]Session, profiles []Profile) []ViewRecord {
	out := make([]ViewRecord, 0, min(len(sessions), len(profiles)))
	if len(sessions) == 0 {
		return out
	}
	for _, p := range profiles {
		s, ok := sessions[p.UserID]
		if !ok {
			continue
		}
		out = append(out, newViewRecord(p, s))
	}
	return out
}
