package models

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Membership statuses
const (
	MembershipPending = "pending"
	MembershipActive  = "active"
	MembershipExpired = "expired"
)

// Payment statuses
const (
	PaymentPending   = "pending"
	PaymentConfirmed = "confirmed"
	PaymentRejected  = "rejected"
)

// Notification types
const (
	NotificationWelcome         = "welcome"
	NotificationPaymentReceived = "payment_received"
	NotificationRenewalReminder = "renewal_reminder"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User represents an alumni member account
type User struct {
	BaseModel
	Email            string     `json:"email" gorm:"unique;not null"`
	PasswordHash     string     `json:"-" gorm:"not null"`
	Name             string     `json:"name" gorm:"not null"`
	Phone            string     `json:"phone"`
	GraduationYear   int        `json:"graduation_year" gorm:"not null"`
	MemberNumber     string     `json:"member_number" gorm:"unique;not null"`
	MembershipStatus string     `json:"membership_status" gorm:"not null;default:pending"`
	MembershipExpiry *time.Time `json:"membership_expiry"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// GenerateMemberNumber builds a member number like AL-2026-4F8Z2KQH.
// The suffix comes from ULID entropy so numbers are unique without a counter.
func GenerateMemberNumber(graduationYear int) string {
	id := ulid.Make().String()
	return fmt.Sprintf("AL-%d-%s", graduationYear, id[len(id)-8:])
}

// Payment represents a membership dues or donation payment submitted by a member
type Payment struct {
	BaseModel
	UserID      string `json:"user_id" gorm:"not null;index"`
	Reference   string `json:"reference" gorm:"unique;not null"` // PAY-<ULID>
	AmountCents int64  `json:"amount_cents" gorm:"not null"`
	Purpose     string `json:"purpose" gorm:"not null"` // membership_dues, donation
	Status      string `json:"status" gorm:"not null;default:pending"`
	Notes       string `json:"notes"`
	ReceiptPath string `json:"receipt_path"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// GeneratePaymentReference generates a unique payment reference
func GeneratePaymentReference() string {
	return fmt.Sprintf("PAY-%s", ulid.Make().String())
}

// Notification is an outbox record produced by the worker for member emails
type Notification struct {
	BaseModel
	UserID  string     `json:"user_id" gorm:"not null;index"`
	Type    string     `json:"type" gorm:"not null"`
	Subject string     `json:"subject" gorm:"not null"`
	Body    string     `json:"body" gorm:"type:text"`
	SentAt  *time.Time `json:"sent_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// RevokedToken records a JWT ID invalidated by logout.
// Rows past their expiry can be purged safely.
type RevokedToken struct {
	BaseModel
	JTI       string    `json:"jti" gorm:"unique;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{}, &Payment{}, &Notification{}, &RevokedToken{},
	)
}
