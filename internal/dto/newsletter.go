package dto

// NewsletterRequest is the body of the subscribe and unsubscribe endpoints.
type NewsletterRequest struct {
	Email string `json:"email"`
}

// NewsletterResponse reports the subscription outcome. Exactly one flag is set.
type NewsletterResponse struct {
	Message           string `json:"message"`
	Success           bool   `json:"success,omitempty"`
	AlreadySubscribed bool   `json:"alreadySubscribed,omitempty"`
	Reactivated       bool   `json:"reactivated,omitempty"`
	Unsubscribed      bool   `json:"unsubscribed,omitempty"`
}
