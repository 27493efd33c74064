package types

import "time"

// Registration is the attendee record. Only CheckedIn is ever written by
// this service, and it tracks the main sub-event alone.
type Registration struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CheckedIn bool      `json:"checked_in"`
	CreatedAt time.Time `json:"created_at"`
	QRCodeURL string    `json:"qr_code_url,omitempty"`
}

// AttendeeSummary is the projection returned by search.
type AttendeeSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CheckedIn bool   `json:"checked_in"`
}

// Checkin is one entry of the append-only attendance log.
type Checkin struct {
	ID             string    `json:"id"`
	RegistrationID string    `json:"registration_id"`
	Subevent       Subevent  `json:"subevent"`
	CreatedAt      time.Time `json:"created_at"`
}

type AttendeeResponse struct {
	Attendee Registration `json:"attendee"`
	Checkins History      `json:"checkins"`
}

type SearchResponse struct {
	Attendees []AttendeeSummary `json:"attendees"`
}

type CheckinRequest struct {
	ID       string `json:"id"`
	Subevent string `json:"subevent,omitempty"`
}

type CheckoutRequest struct {
	ID string `json:"id"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
