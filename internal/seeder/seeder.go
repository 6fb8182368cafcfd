package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/storefront/internal/database"
	"github.com/Additional-Code/storefront/internal/entity"
	orderrepo "github.com/Additional-Code/storefront/internal/repository/order"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// reviewNamespace derives stable review ids so reseeding is idempotent.
var reviewNamespace = uuid.MustParse("6f1d7c8a-2b0e-4f53-9a57-4c3e1f0b9d21")

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	factory *database.Factory
	orders  *orderrepo.Repository
	logger  *zap.Logger
}

// New constructs a Seeder writing through the privileged handle.
func New(factory *database.Factory, orders *orderrepo.Repository, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{factory: factory, orders: orders, logger: logger}
}

// Run seeds the catalog and then the sample orders.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.Catalog(ctx); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if err := s.Orders(ctx); err != nil {
		return fmt.Errorf("seed orders: %w", err)
	}
	return nil
}

// Catalog seeds products, author profiles and reviews if they are missing.
func (s *Seeder) Catalog(ctx context.Context) error {
	db, err := s.factory.Privileged()
	if err != nil {
		return err
	}

	compareAt := decimal.RequireFromString("299.90")
	products := []entity.Product{
		{
			Slug:           "camara-vigilancia-x1",
			Name:           "Cámara de vigilancia",
			Model:          "X1",
			Description:    "Cámara WiFi 2K con visión nocturna.",
			Price:          decimal.RequireFromString("249.90"),
			CompareAtPrice: &compareAt,
			Stock:          12,
			StockStatus:    entity.StockInStock,
			Active:         true,
			StorySections: []entity.StorySection{
				{Title: "Visión nocturna", Body: "Imagen nítida hasta 10 metros en total oscuridad."},
				{Title: "Batería", Body: "Hasta 30 días por carga."},
			},
			TechnicalSpecs: map[string]any{"resolution": "2K", "storage": "microSD 128GB"},
			FAQs:           []entity.FAQ{{Question: "¿Es resistente al agua?", Answer: "Sí, certificación IP65."}},
		},
		{
			Slug:        "timbre-inteligente-d2",
			Name:        "Timbre inteligente",
			Model:       "D2",
			Description: "Timbre con video y audio bidireccional.",
			Price:       decimal.RequireFromString("159.00"),
			Stock:       0,
			StockStatus: entity.StockPreOrder,
			Active:      true,
		},
	}
	for i := range products {
		if _, err := db.NewInsert().Model(&products[i]).Ignore().Returning("NULL").Exec(ctx); err != nil {
			return err
		}
	}

	laura := "Laura Pérez"
	profiles := []entity.UserProfile{{ID: "seed-user-laura", FullName: &laura}, {ID: "seed-user-anon"}}
	for i := range profiles {
		if _, err := db.NewInsert().Model(&profiles[i]).Ignore().Exec(ctx); err != nil {
			return err
		}
	}

	var cam entity.Product
	if err := db.NewSelect().Model(&cam).Where("slug = ?", products[0].Slug).Limit(1).Scan(ctx); err != nil {
		return err
	}

	now := time.Now().UTC()
	reviews := []entity.ProductReview{
		{ProductID: cam.ID, UserID: &profiles[0].ID, Rating: 5, Comment: "Excelente calidad de imagen.", VerifiedPurchase: true, CreatedAt: now.AddDate(0, 0, -10)},
		{ProductID: cam.ID, UserID: &profiles[1].ID, Rating: 4, Comment: "Buena, la app podría mejorar.", VerifiedPurchase: true, CreatedAt: now.AddDate(0, 0, -3)},
		{ProductID: cam.ID, Rating: 3, Comment: "Cumple.", CreatedAt: now.AddDate(0, 0, -1)},
	}
	for i := range reviews {
		reviews[i].ID = uuid.NewSHA1(reviewNamespace, []byte(fmt.Sprintf("%s/%d", cam.Slug, i))).String()
		if _, err := db.NewInsert().Model(&reviews[i]).Ignore().Exec(ctx); err != nil {
			return err
		}
	}

	s.logger.Info("seeded catalog",
		zap.Int("products", len(products)),
		zap.Int("profiles", len(profiles)),
		zap.Int("reviews", len(reviews)),
	)
	return nil
}

// Orders seeds example orders if they are missing.
func (s *Seeder) Orders(ctx context.Context) error {
	now := time.Now().UTC()
	type sample struct {
		order entity.Order
		items []entity.OrderItem
	}
	tracking := "TRK-000123"
	samples := []sample{
		{
			order: entity.Order{
				OrderNumber:        "ORD-1000",
				CreatedAt:          now.Add(-48 * time.Hour),
				Subtotal:           decimal.RequireFromString("499.80"),
				ShippingCost:       decimal.RequireFromString("15.00"),
				Total:              decimal.RequireFromString("514.80"),
				OrderStatus:        entity.OrderStatusPending,
				PaymentMethod:      "card",
				PaymentStatus:      "approved",
				CustomerName:       "Ana Gómez",
				CustomerEmail:      "ana@example.com",
				CustomerPhone:      "+57 300 000 0000",
				ShippingAddress:    "Calle 10 # 43-20",
				ShippingCity:       "Medellín",
				ShippingDepartment: "Antioquia",
				ShippingPostalCode: "050021",
			},
			items: []entity.OrderItem{
				{ProductName: "Cámara de vigilancia", ProductModel: "X1", Quantity: 2, UnitPrice: decimal.RequireFromString("249.90"), TotalPrice: decimal.RequireFromString("499.80")},
			},
		},
		{
			order: entity.Order{
				OrderNumber:        "ORD-1001",
				CreatedAt:          now.Add(-24 * time.Hour),
				Subtotal:           decimal.RequireFromString("408.90"),
				ShippingCost:       decimal.Zero,
				Total:              decimal.RequireFromString("408.90"),
				OrderStatus:        entity.OrderStatusShipped,
				PaymentMethod:      "pse",
				PaymentStatus:      "approved",
				CustomerName:       "Carlos Ruiz",
				CustomerEmail:      "carlos@example.com",
				ShippingAddress:    "Carrera 7 # 72-41",
				ShippingCity:       "Bogotá",
				ShippingDepartment: "Cundinamarca",
				TrackingNumber:     &tracking,
			},
			items: []entity.OrderItem{
				{ProductName: "Cámara de vigilancia", ProductModel: "X1", Quantity: 1, UnitPrice: decimal.RequireFromString("249.90"), TotalPrice: decimal.RequireFromString("249.90")},
				{ProductName: "Timbre inteligente", ProductModel: "D2", Quantity: 1, UnitPrice: decimal.RequireFromString("159.00"), TotalPrice: decimal.RequireFromString("159.00")},
			},
		},
	}

	created := 0
	for _, smp := range samples {
		_, err := s.orders.Find(ctx, orderrepo.Key{Column: orderrepo.ColumnNumber, Value: smp.order.OrderNumber})
		if err == nil {
			continue
		}
		if !errors.Is(err, orderrepo.ErrNotFound) {
			return err
		}
		order := smp.order
		if err := s.orders.Create(ctx, &order, smp.items); err != nil {
			return fmt.Errorf("create %s: %w", order.OrderNumber, err)
		}
		created++
	}

	s.logger.Info("seeded orders", zap.Int("created", created), zap.Int("samples", len(samples)))
	return nil
}

