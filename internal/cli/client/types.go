package client

import "time"

// User represents the member profile as served by the API
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	Phone            string     `json:"phone"`
	GraduationYear   int        `json:"graduation_year"`
	MemberNumber     string     `json:"member_number"`
	MembershipStatus string     `json:"membership_status"`
	MembershipExpiry *time.Time `json:"membership_expiry"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Payment represents a payment as served by the API
type Payment struct {
	ID          string    `json:"id"`
	Reference   string    `json:"reference"`
	AmountCents int64     `json:"amount_cents"`
	Purpose     string    `json:"purpose"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
	HasReceipt  bool      `json:"has_receipt"`
	CreatedAt   time.Time `json:"created_at"`
}

// AuthResult is returned by Login and Register
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// RegisterRequest carries the registration form fields
type RegisterRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	GraduationYear int    `json:"graduation_year"`
	Phone          string `json:"phone,omitempty"`
}

// UpdateProfileRequest carries a partial profile update.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name           *string `json:"name,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	GraduationYear *int    `json:"graduation_year,omitempty"`
}

// SubmitPaymentRequest carries the payment submission form. Amount is a
// decimal string like "150.00". ReceiptPath points at a local file to
// upload, empty for none.
type SubmitPaymentRequest struct {
	Amount      string
	Purpose     string
	Notes       string
	ReceiptPath string
}

// MessageResponse is a bare server acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}
