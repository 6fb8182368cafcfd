package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// NewsletterSubscriber is keyed by its lowercase email.
type NewsletterSubscriber struct {
	bun.BaseModel `bun:"table:newsletter_subscribers,alias:ns"`

	ID             int64      `bun:"id,pk,autoincrement" json:"id"`
	Email          string     `bun:"email,notnull,unique" json:"email"`
	Active         bool       `bun:"active,notnull" json:"active"`
	SubscribedAt   time.Time  `bun:"subscribed_at,nullzero,notnull" json:"subscribed_at"`
	UnsubscribedAt *time.Time `bun:"unsubscribed_at" json:"unsubscribed_at"`
}
