package dto

import (
	"github.com/Additional-Code/storefront/internal/entity"
	"github.com/Additional-Code/storefront/internal/review"
)

// ProductListResponse wraps the active catalog.
type ProductListResponse struct {
	Products []entity.Product `json:"products"`
}

// ReviewListResponse wraps the display reviews of one product.
type ReviewListResponse struct {
	Reviews []review.Review `json:"reviews"`
}
