package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CollectionProduct = "product"
	CollectionShop    = "shop"
	CollectionBanner  = "banner"
	CollectionPost    = "post"
)

var ErrInvalid = errors.New("invalid record")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Product is keyed by its own productid, not a store-assigned id.
type Product struct {
	ProductID    string          `json:"productid"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	ProductImage string          `json:"productImage"`
	Origin       string          `json:"origin"`
	Description  string          `json:"description"`
}

func (p *Product) Normalize() error {
	p.ProductID = strings.TrimSpace(p.ProductID)
	p.Name = strings.TrimSpace(p.Name)
	if p.ProductID == "" {
		return invalid("productid is required")
	}
	if strings.ContainsAny(p.ProductID, "/") {
		return invalid("productid must not contain '/'")
	}
	if p.Name == "" {
		return invalid("name is required")
	}
	if p.Price.IsNegative() {
		return invalid("price must not be negative")
	}
	return nil
}

type Shop struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	ImageURL string `json:"imageUrl"`
	MapURL   string `json:"mapUrl"`
}

func (s *Shop) Normalize() error {
	s.Name = strings.TrimSpace(s.Name)
	s.Address = strings.TrimSpace(s.Address)
	if s.Name == "" {
		return invalid("name is required")
	}
	return nil
}

type Banner struct {
	ID       string `json:"id,omitempty"`
	ImageURL string `json:"imageUrl"`
}

func (b *Banner) Normalize() error {
	b.ImageURL = strings.TrimSpace(b.ImageURL)
	if b.ImageURL == "" {
		return invalid("imageUrl is required")
	}
	return nil
}

type Post struct {
	ID       string    `json:"id,omitempty"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	ImageURL string    `json:"imageUrl"`
	Date     time.Time `json:"date"`
}

func (p *Post) Normalize() error {
	p.Title = strings.TrimSpace(p.Title)
	p.Content = strings.TrimSpace(p.Content)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	if p.Title == "" {
		return invalid("title is required")
	}
	if p.Content == "" {
		return invalid("content is required")
	}
	return nil
}
