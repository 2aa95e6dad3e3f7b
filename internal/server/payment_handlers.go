package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/alumnihub-dev/alumnihub/internal/models"
	"github.com/alumnihub-dev/alumnihub/internal/tasks"
)

// PaymentDetail represents a payment returned in responses
type PaymentDetail struct {
	ID          string    `json:"id"`
	Reference   string    `json:"reference"`
	AmountCents int64     `json:"amount_cents"`
	Purpose     string    `json:"purpose"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
	HasReceipt  bool      `json:"has_receipt"`
	CreatedAt   time.Time `json:"created_at"`
}

var validPaymentStatuses = map[string]bool{
	models.PaymentPending:   true,
	models.PaymentConfirmed: true,
	models.PaymentRejected:  true,
}

var validPaymentPurposes = map[string]bool{
	"membership_dues": true,
	"donation":        true,
}

func paymentDetail(p *models.Payment) PaymentDetail {
	return PaymentDetail{
		ID:          p.ID,
		Reference:   p.Reference,
		AmountCents: p.AmountCents,
		Purpose:     p.Purpose,
		Status:      p.Status,
		Notes:       p.Notes,
		HasReceipt:  p.ReceiptPath != "",
		CreatedAt:   p.CreatedAt,
	}
}

func (s *Server) listPayments(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := s.db.Where("user_id = ?", sessionData.UserID).Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		if !validPaymentStatuses[status] {
			respondFieldErrors(c, map[string][]string{
				"status": {"The status must be one of: pending, confirmed, rejected."},
			})
			return
		}
		query = query.Where("status = ?", status)
	}

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list payments")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	details := make([]PaymentDetail, len(payments))
	for i := range payments {
		details[i] = paymentDetail(&payments[i])
	}

	c.JSON(http.StatusOK, details)
}

func (s *Server) getPayment(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payment models.Payment
	err := s.db.Where("id = ? AND user_id = ?", c.Param("id"), sessionData.UserID).First(&payment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			respondError(c, http.StatusNotFound, "Payment not found")
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find payment")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, paymentDetail(&payment))
}

// createPayment accepts a multipart form: amount (decimal), purpose,
// optional notes and an optional receipt file.
func (s *Server) createPayment(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	fieldErrors := make(map[string][]string)

	amountCents, err := parseAmountCents(c.PostForm("amount"))
	if err != nil {
		fieldErrors["amount"] = append(fieldErrors["amount"], err.Error())
	}

	purpose := c.PostForm("purpose")
	if purpose == "" {
		fieldErrors["purpose"] = append(fieldErrors["purpose"], "The purpose field is required.")
	} else if !validPaymentPurposes[purpose] {
		fieldErrors["purpose"] = append(fieldErrors["purpose"], "The purpose must be one of: membership_dues, donation.")
	}

	if len(fieldErrors) > 0 {
		respondFieldErrors(c, fieldErrors)
		return
	}

	receiptPath := ""
	if file, err := c.FormFile("receipt"); err == nil {
		name := ulid.Make().String() + filepath.Ext(file.Filename)
		receiptPath = filepath.Join(s.config.Server.UploadDir, name)
		if err := c.SaveUploadedFile(file, receiptPath); err != nil {
			s.logger.Error().Err(err).Msg("Failed to save receipt")
			respondError(c, http.StatusInternalServerError, "Failed to store receipt")
			return
		}
	}

	payment := &models.Payment{
		UserID:      sessionData.UserID,
		Reference:   models.GeneratePaymentReference(),
		AmountCents: amountCents,
		Purpose:     purpose,
		Status:      models.PaymentPending,
		Notes:       c.PostForm("notes"),
		ReceiptPath: receiptPath,
	}

	if err := s.db.Create(payment).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create payment")
		respondError(c, http.StatusInternalServerError, "Failed to record payment")
		return
	}

	s.enqueueTask(tasks.NewPaymentReceivedTask(sessionData.UserID, payment.ID))

	s.logger.Info().
		Str("payment_id", payment.ID).
		Str("user_id", sessionData.UserID).
		Int64("amount_cents", amountCents).
		Msg("Payment submitted")

	c.JSON(http.StatusCreated, paymentDetail(payment))
}

// parseAmountCents parses a decimal amount like "150.00" into cents
func parseAmountCents(raw string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("The amount field is required.")
	}

	whole, frac, _ := strings.Cut(raw, ".")
	if len(frac) > 2 {
		return 0, fmt.Errorf("The amount may not have more than two decimal places.")
	}
	for len(frac) < 2 {
		frac += "0"
	}

	// Unsigned parsing so a sign can't hide in either part
	units, err := strconv.ParseUint(whole, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("The amount must be a positive number.")
	}

	cents := uint64(0)
	if frac != "00" {
		cents, err = strconv.ParseUint(frac, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("The amount must be a positive number.")
		}
	}

	total := int64(units)*100 + int64(cents)
	if total <= 0 {
		return 0, fmt.Errorf("The amount must be greater than zero.")
	}

	return total, nil
}
