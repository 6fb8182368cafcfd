package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/storefront/internal/database"
	"github.com/Additional-Code/storefront/internal/database/dbtest"
	"github.com/Additional-Code/storefront/internal/entity"
)

func seedCatalog(t *testing.T, factory *database.Factory) *entity.Product {
	t.Helper()
	ctx := context.Background()
	db, err := factory.Privileged()
	require.NoError(t, err)

	cam := &entity.Product{
		Slug:        "cam-x1",
		Name:        "Cam",
		Model:       "X1",
		Price:       decimal.RequireFromString("249.90"),
		Stock:       4,
		StockStatus: entity.StockInStock,
		Active:      true,
		StorySections: []entity.StorySection{
			{Title: "Night vision", Body: "Sees in the dark."},
			{Title: "Battery", Body: "Lasts a month."},
		},
		TechnicalSpecs: map[string]any{"resolution": "2K"},
		FAQs:           []entity.FAQ{{Question: "Waterproof?", Answer: "IP65."}},
	}
	hidden := &entity.Product{Slug: "old-cam", Name: "Old Cam", Price: decimal.RequireFromString("10"), StockStatus: entity.StockDiscontinued, Active: false}
	for _, p := range []*entity.Product{cam, hidden} {
		_, err := db.NewInsert().Model(p).Exec(ctx)
		require.NoError(t, err)
	}

	name := "Laura Pérez"
	_, err = db.NewInsert().Model(&entity.UserProfile{ID: "user-1", FullName: &name}).Exec(ctx)
	require.NoError(t, err)

	user := "user-1"
	reviews := []entity.ProductReview{
		{ID: "rev-1", ProductID: cam.ID, UserID: &user, Rating: 4, Comment: "Great", VerifiedPurchase: true, CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "rev-2", ProductID: cam.ID, Rating: 5, Comment: "Anonymous", CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	for i := range reviews {
		_, err := db.NewInsert().Model(&reviews[i]).Exec(ctx)
		require.NoError(t, err)
	}
	return cam
}

func TestListActiveProducts(t *testing.T) {
	factory := dbtest.NewFactory(t)
	seedCatalog(t, factory)
	repo := NewRepository(factory)

	products, err := repo.ListActiveProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "cam-x1", products[0].Slug)
	require.Len(t, products[0].StorySections, 2)
	assert.Equal(t, "Night vision", products[0].StorySections[0].Title)
	assert.Equal(t, "2K", products[0].TechnicalSpecs["resolution"])
}

func TestGetProductBySlug(t *testing.T) {
	factory := dbtest.NewFactory(t)
	seedCatalog(t, factory)
	repo := NewRepository(factory)

	p, err := repo.GetProductBySlug(context.Background(), "cam-x1")
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("249.9")))

	_, err = repo.GetProductBySlug(context.Background(), "old-cam")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListReviewsJoinsProfileAndProduct(t *testing.T) {
	factory := dbtest.NewFactory(t)
	cam := seedCatalog(t, factory)
	repo := NewRepository(factory)

	reviews, err := repo.ListReviews(context.Background(), cam.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)

	assert.Equal(t, "rev-2", reviews[0].ID)
	assert.Equal(t, "rev-1", reviews[1].ID)

	require.NotNil(t, reviews[1].Profile)
	require.NotNil(t, reviews[1].Profile.FullName)
	assert.Equal(t, "Laura Pérez", *reviews[1].Profile.FullName)

	require.NotNil(t, reviews[0].Product)
	assert.Equal(t, "Cam", reviews[0].Product.Name)
	assert.Equal(t, "X1", reviews[0].Product.Model)
}
