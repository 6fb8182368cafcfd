package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Stock statuses.
const (
	StockInStock      = "in_stock"
	StockOutOfStock   = "out_of_stock"
	StockPreOrder     = "pre_order"
	StockDiscontinued = "discontinued"
)

// StorySection is one block of a long-form product page.
type StorySection struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	ImageURL string `json:"image_url,omitempty"`
}

// FAQ is a question/answer pair shown on the product page.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Product is a catalog entry. It is read-only from the storefront API.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID             int64            `bun:"id,pk,autoincrement" json:"id"`
	Slug           string           `bun:"slug,notnull,unique" json:"slug"`
	Name           string           `bun:"name,notnull" json:"name"`
	Model          string           `bun:"model" json:"model"`
	Description    string           `bun:"description" json:"description"`
	Price          decimal.Decimal  `bun:"price,type:numeric(12,2),notnull" json:"price"`
	CompareAtPrice *decimal.Decimal `bun:"compare_at_price,type:numeric(12,2)" json:"compare_at_price,omitempty"`
	Stock          int              `bun:"stock,notnull" json:"stock"`
	StockStatus    string           `bun:"stock_status,notnull" json:"stock_status"`
	Rating         float64          `bun:"rating,notnull" json:"rating"`
	ReviewCount    int              `bun:"review_count,notnull" json:"review_count"`
	Active         bool             `bun:"active,notnull" json:"active"`
	ImageURL       string           `bun:"image_url" json:"image_url"`
	StorySections  []StorySection   `bun:"story_sections,type:jsonb" json:"story_sections,omitempty"`
	TechnicalSpecs map[string]any   `bun:"technical_specs,type:jsonb" json:"technical_specs,omitempty"`
	FAQs           []FAQ            `bun:"faqs,type:jsonb" json:"faqs,omitempty"`
	CreatedAt      time.Time        `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time        `bun:"updated_at,nullzero" json:"updated_at"`
}
