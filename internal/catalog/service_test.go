package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phampho1103/UITPAY-Web/internal/docstore"
)

func newService() (*Service, *docstore.Memory) {
	docs := docstore.NewMemory()
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	return &Service{Docs: docs, Now: func() time.Time { return now }}, docs
}

func TestProducts_SaveIsKeyedByProductID(t *testing.T) {
	svc, docs := newService()
	ctx := context.Background()

	_, err := svc.SaveProduct(ctx, Product{ProductID: "p1", Name: "Tra sua", Price: decimal.NewFromInt(25000)})
	require.NoError(t, err)
	_, err = svc.SaveProduct(ctx, Product{ProductID: "p1", Name: "Tra sua tran chau", Price: decimal.NewFromInt(30000)})
	require.NoError(t, err)

	ps, err := svc.Products(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "Tra sua tran chau", ps[0].Name)
	assert.True(t, ps[0].Price.Equal(decimal.NewFromInt(30000)))

	_, err = docs.Get(ctx, CollectionProduct, "p1")
	assert.NoError(t, err)
}

func TestProducts_Validation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	tests := map[string]Product{
		"missing id":     {Name: "x"},
		"slash in id":    {ProductID: "a/b", Name: "x"},
		"missing name":   {ProductID: "p1"},
		"negative price": {ProductID: "p1", Name: "x", Price: decimal.NewFromInt(-1)},
	}
	for name, p := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.SaveProduct(ctx, p)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestProducts_DeleteMissing(t *testing.T) {
	svc, _ := newService()
	assert.ErrorIs(t, svc.DeleteProduct(context.Background(), "nope"), docstore.ErrNotFound)
}

func TestShops_CRUD(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	created, err := svc.CreateShop(ctx, Shop{Name: "  UIT Mart ", Address: "Thu Duc"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "UIT Mart", created.Name)

	_, err = svc.UpdateShop(ctx, created.ID, Shop{Name: "UIT Mart 2", Address: "Q1", MapURL: "https://maps"})
	require.NoError(t, err)

	got, err := svc.Shop(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, Shop{ID: created.ID, Name: "UIT Mart 2", Address: "Q1", MapURL: "https://maps"}, got)

	require.NoError(t, svc.DeleteShop(ctx, created.ID))
	shops, err := svc.Shops(ctx)
	require.NoError(t, err)
	assert.Empty(t, shops)
}

func TestShops_UpdateMissing(t *testing.T) {
	svc, _ := newService()
	_, err := svc.UpdateShop(context.Background(), "nope", Shop{Name: "x"})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestBanners_RequireImage(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.CreateBanner(ctx, Banner{ImageURL: "   "})
	assert.ErrorIs(t, err, ErrInvalid)

	b, err := svc.CreateBanner(ctx, Banner{ImageURL: "https://img/1.png"})
	require.NoError(t, err)
	bs, err := svc.Banners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Banner{b}, bs)
}

func TestPosts_NewestFirstAndDefaultDate(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	old, err := svc.CreatePost(ctx, Post{Title: "Old", Content: "a", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	fresh, err := svc.CreatePost(ctx, Post{Title: "Fresh", Content: "b"})
	require.NoError(t, err)
	assert.True(t, fresh.Date.Equal(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)))

	posts, err := svc.Posts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, fresh.ID, posts[0].ID)
	assert.Equal(t, old.ID, posts[1].ID)
}

func TestPosts_TrimAndValidate(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, Post{Title: "  ", Content: "x"})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = svc.CreatePost(ctx, Post{Title: "x", Content: "\n"})
	assert.ErrorIs(t, err, ErrInvalid)

	p, err := svc.CreatePost(ctx, Post{Title: " Khai truong ", Content: " Giam gia 50% "})
	require.NoError(t, err)
	assert.Equal(t, "Khai truong", p.Title)
	assert.Equal(t, "Giam gia 50%", p.Content)
}
