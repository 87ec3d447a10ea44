package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/phampho1103/UITPAY-Web/internal/docstore"
)

// Service is the CRUD layer behind the product, shop, banner and post screens.
type Service struct {
	Docs docstore.Store
	Now  func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func list[T any](ctx context.Context, docs docstore.Store, coll string, setID func(*T, string)) ([]T, error) {
	ds, err := docs.List(ctx, coll)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(ds))
	for _, d := range ds {
		var v T
		if err := d.Decode(&v); err != nil {
			return nil, err
		}
		setID(&v, d.ID)
		out = append(out, v)
	}
	return out, nil
}

func get[T any](ctx context.Context, docs docstore.Store, coll, id string, setID func(*T, string)) (T, error) {
	var v T
	d, err := docs.Get(ctx, coll, id)
	if err != nil {
		return v, err
	}
	if err := d.Decode(&v); err != nil {
		return v, err
	}
	setID(&v, d.ID)
	return v, nil
}

// fieldsOf flattens a record to its stored fields, without the id.
func fieldsOf(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	delete(m, "id")
	return m, nil
}

// ---- products ----

func setProductID(p *Product, id string) {
	if p.ProductID == "" {
		p.ProductID = id
	}
}

func (s *Service) Products(ctx context.Context) ([]Product, error) {
	return list(ctx, s.Docs, CollectionProduct, setProductID)
}

func (s *Service) Product(ctx context.Context, id string) (Product, error) {
	return get(ctx, s.Docs, CollectionProduct, id, setProductID)
}

// SaveProduct creates or replaces the product stored under its productid.
func (s *Service) SaveProduct(ctx context.Context, p Product) (Product, error) {
	if err := p.Normalize(); err != nil {
		return Product{}, err
	}
	if err := s.Docs.Set(ctx, CollectionProduct, p.ProductID, p); err != nil {
		return Product{}, fmt.Errorf("save product: %w", err)
	}
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.Docs.Delete(ctx, CollectionProduct, id)
}

// ---- shops ----

func setShopID(v *Shop, id string) { v.ID = id }

func (s *Service) Shops(ctx context.Context) ([]Shop, error) {
	return list(ctx, s.Docs, CollectionShop, setShopID)
}

func (s *Service) Shop(ctx context.Context, id string) (Shop, error) {
	return get(ctx, s.Docs, CollectionShop, id, setShopID)
}

func (s *Service) CreateShop(ctx context.Context, v Shop) (Shop, error) {
	if err := v.Normalize(); err != nil {
		return Shop{}, err
	}
	v.ID = ""
	id, err := s.Docs.Add(ctx, CollectionShop, v)
	if err != nil {
		return Shop{}, fmt.Errorf("create shop: %w", err)
	}
	v.ID = id
	return v, nil
}

func (s *Service) UpdateShop(ctx context.Context, id string, v Shop) (Shop, error) {
	if err := v.Normalize(); err != nil {
		return Shop{}, err
	}
	if err := s.update(ctx, CollectionShop, id, v); err != nil {
		return Shop{}, err
	}
	v.ID = id
	return v, nil
}

func (s *Service) DeleteShop(ctx context.Context, id string) error {
	return s.Docs.Delete(ctx, CollectionShop, id)
}

// ---- banners ----

func setBannerID(v *Banner, id string) { v.ID = id }

func (s *Service) Banners(ctx context.Context) ([]Banner, error) {
	return list(ctx, s.Docs, CollectionBanner, setBannerID)
}

func (s *Service) Banner(ctx context.Context, id string) (Banner, error) {
	return get(ctx, s.Docs, CollectionBanner, id, setBannerID)
}

func (s *Service) CreateBanner(ctx context.Context, v Banner) (Banner, error) {
	if err := v.Normalize(); err != nil {
		return Banner{}, err
	}
	v.ID = ""
	id, err := s.Docs.Add(ctx, CollectionBanner, v)
	if err != nil {
		return Banner{}, fmt.Errorf("create banner: %w", err)
	}
	v.ID = id
	return v, nil
}

func (s *Service) UpdateBanner(ctx context.Context, id string, v Banner) (Banner, error) {
	if err := v.Normalize(); err != nil {
		return Banner{}, err
	}
	if err := s.update(ctx, CollectionBanner, id, v); err != nil {
		return Banner{}, err
	}
	v.ID = id
	return v, nil
}

func (s *Service) DeleteBanner(ctx context.Context, id string) error {
	return s.Docs.Delete(ctx, CollectionBanner, id)
}

// ---- posts ----

func setPostID(v *Post, id string) { v.ID = id }

// Posts are returned newest first; posts without a date sort last.
func (s *Service) Posts(ctx context.Context) ([]Post, error) {
	out, err := list(ctx, s.Docs, CollectionPost, setPostID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *Service) Post(ctx context.Context, id string) (Post, error) {
	return get(ctx, s.Docs, CollectionPost, id, setPostID)
}

func (s *Service) CreatePost(ctx context.Context, v Post) (Post, error) {
	if err := v.Normalize(); err != nil {
		return Post{}, err
	}
	if v.Date.IsZero() {
		v.Date = s.now()
	}
	v.ID = ""
	id, err := s.Docs.Add(ctx, CollectionPost, v)
	if err != nil {
		return Post{}, fmt.Errorf("create post: %w", err)
	}
	v.ID = id
	return v, nil
}

func (s *Service) UpdatePost(ctx context.Context, id string, v Post) (Post, error) {
	if err := v.Normalize(); err != nil {
		return Post{}, err
	}
	if v.Date.IsZero() {
		v.Date = s.now()
	}
	if err := s.update(ctx, CollectionPost, id, v); err != nil {
		return Post{}, err
	}
	v.ID = id
	return v, nil
}

func (s *Service) DeletePost(ctx context.Context, id string) error {
	return s.Docs.Delete(ctx, CollectionPost, id)
}

func (s *Service) update(ctx context.Context, coll, id string, v any) error {
	fields, err := fieldsOf(v)
	if err != nil {
		return err
	}
	return s.Docs.Update(ctx, coll, id, fields)
}
