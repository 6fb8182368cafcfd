package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// UserProfile holds the public display data of a customer account.
type UserProfile struct {
	bun.BaseModel `bun:"table:user_profiles,alias:up"`

	ID       string  `bun:"id,pk"`
	FullName *string `bun:"full_name"`
}

// ProductReview is a stored review with its optional joined author and product.
type ProductReview struct {
	bun.BaseModel `bun:"table:product_reviews,alias:pr"`

	ID               string    `bun:"id,pk"`
	ProductID        int64     `bun:"product_id,notnull"`
	UserID           *string   `bun:"user_id"`
	Rating           float64   `bun:"rating,notnull"`
	Comment          string    `bun:"comment"`
	VerifiedPurchase bool      `bun:"verified_purchase,notnull"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`

	Profile *UserProfile `bun:"rel:belongs-to,join:user_id=id"`
	Product *Product     `bun:"rel:belongs-to,join:product_id=id"`
}
