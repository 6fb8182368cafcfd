// Package review maps stored review rows, with their optional joined author
// and product, into the display model used by the storefront.
package review

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// AnonymousAuthor is shown when a review has no author profile or name.
const AnonymousAuthor = "Cliente verificado"

// DefaultRating is used when the stored rating is missing or not a finite number.
const DefaultRating = 5

const (
	minRating = 1
	maxRating = 5
)

// DisplayDateLayout is the short date form shown next to a review.
const DisplayDateLayout = "Jan 2, 2006"

var acceptedDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ErrMissingID is returned for rows without an identifier.
var ErrMissingID = errors.New("review id is required")

// RawRating holds a rating exactly as it came from storage or JSON: a number,
// a numeric string, or garbage.
type RawRating struct {
	raw   string
	valid bool
}

// RatingOf builds a RawRating from a number.
func RatingOf(v float64) RawRating {
	return RawRating{raw: strconv.FormatFloat(v, 'f', -1, 64), valid: true}
}

// RatingText builds a RawRating from arbitrary text.
func RatingText(s string) RawRating {
	return RawRating{raw: s, valid: true}
}

// UnmarshalJSON accepts numbers, strings and null.
func (r *RawRating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = RawRating{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RatingText(s)
		return nil
	}
	*r = RatingText(string(data))
	return nil
}

// Scan implements sql.Scanner.
func (r *RawRating) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = RawRating{}
	case int64:
		*r = RatingOf(float64(v))
	case float64:
		*r = RatingOf(v)
	case []byte:
		*r = RatingText(string(v))
	case string:
		*r = RatingText(v)
	default:
		return fmt.Errorf("review: cannot scan %T into rating", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (r RawRating) Value() (driver.Value, error) {
	if !r.valid {
		return nil, nil
	}
	return r.raw, nil
}

// Float returns the rating as a finite number, if it is one.
func (r RawRating) Float() (float64, bool) {
	if !r.valid {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(r.raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ProfileJoin is the optional joined author profile.
type ProfileJoin struct {
	FullName *string `json:"full_name"`
}

// ProductJoin is the optional joined product.
type ProductJoin struct {
	Name  *string `json:"name"`
	Model *string `json:"model"`
}

// Row is the input schema of Normalize. Every field except ID may be absent.
type Row struct {
	ID               string       `json:"id"`
	Rating           RawRating    `json:"rating"`
	Comment          string       `json:"comment"`
	VerifiedPurchase bool         `json:"verified_purchase"`
	CreatedAt        string       `json:"created_at"`
	Profile          *ProfileJoin `json:"user_profiles"`
	Product          *ProductJoin `json:"products"`
}

// Review is the display model.
type Review struct {
	ID               string  `json:"id"`
	Author           string  `json:"author"`
	Rating           int     `json:"rating"`
	Comment          string  `json:"comment"`
	Date             string  `json:"date"`
	VerifiedPurchase bool    `json:"verified_purchase"`
	ProductName      *string `json:"product_name,omitempty"`
}

// Normalize applies defaults and clamping to a row.
func Normalize(row Row) (Review, error) {
	if strings.TrimSpace(row.ID) == "" {
		return Review{}, ErrMissingID
	}

	return Review{
		ID:               row.ID,
		Author:           authorName(row.Profile),
		Rating:           ClampRating(row.Rating),
		Comment:          row.Comment,
		Date:             FormatDate(row.CreatedAt),
		VerifiedPurchase: row.VerifiedPurchase,
		ProductName:      productName(row.Product),
	}, nil
}

// ClampRating defaults non-finite ratings to DefaultRating, clamps to [1,5]
// and rounds half away from zero.
func ClampRating(r RawRating) int {
	v, ok := r.Float()
	if !ok {
		v = DefaultRating
	}
	v = math.Min(maxRating, math.Max(minRating, v))
	return int(math.Round(v))
}

// FormatDate renders raw in DisplayDateLayout. Unparsable input is returned
// unchanged; empty input yields "".
func FormatDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(DisplayDateLayout)
		}
	}
	return raw
}

func authorName(p *ProfileJoin) string {
	if p == nil || p.FullName == nil || strings.TrimSpace(*p.FullName) == "" {
		return AnonymousAuthor
	}
	return *p.FullName
}

func productName(p *ProductJoin) *string {
	if p == nil {
		return nil
	}
	parts := make([]string, 0, 2)
	for _, s := range []*string{p.Name, p.Model} {
		if s != nil && strings.TrimSpace(*s) != "" {
			parts = append(parts, *s)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	name := strings.Join(parts, " - ")
	return &name
}
