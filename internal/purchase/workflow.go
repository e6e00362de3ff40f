// internal/purchase/workflow.go
package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/codehaven/codehaven-backend/internal/models"
	"github.com/codehaven/codehaven-backend/internal/utils"
)

// State identifies a step of the checkout flow.
type State string

const (
	StateCollectingDetails State = "collecting_details"
	StateConfirmingPayment State = "confirming_payment"
	StateCompleted         State = "completed"
)

const licenseKeyAttempts = 3

var (
	ErrAuthenticationRequired = errors.New("authentication required to complete purchase")
	ErrDownloadLimitReached   = errors.New("download limit reached")
	ErrInvalidTransition      = errors.New("operation not valid in current state")
)

// ValidationError reports the buyer detail fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid buyer details: " + strings.Join(e.Fields, ", ")
}

// PurchaseRecordError wraps a failure to persist the purchase row after the
// buyer confirmed. Payment state may need reconciliation when this occurs.
type PurchaseRecordError struct {
	Err error
}

func (e *PurchaseRecordError) Error() string {
	return fmt.Sprintf("failed to record purchase: %v", e.Err)
}

func (e *PurchaseRecordError) Unwrap() error {
	return e.Err
}

// BuyerDetails is the billing information collected before payment. The
// required fields are checked for presence only; email additionally gets a
// format check.
type BuyerDetails struct {
	FullName    string `json:"full_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required"`
	Address     string `json:"address" validate:"required"`
	City        string `json:"city" validate:"omitempty,max=100"`
	State       string `json:"state" validate:"omitempty,max=100"`
	Country     string `json:"country" validate:"omitempty,max=100"`
	ZipCode     string `json:"zip_code" validate:"omitempty,max=20"`
	CompanyName string `json:"company_name" validate:"omitempty,max=150"`
	VATNumber   string `json:"vat_number" validate:"omitempty,max=50"`
}

// Identity is the authenticated buyer. Operations that need one take it as an
// explicit argument so the workflow itself carries no session state.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Charger settles the payment for a purchase and returns a transaction
// reference. The default implementation mints a synthetic reference without
// contacting a gateway.
type Charger interface {
	Charge(ctx context.Context, amountMinor int64, currency, description string) (string, error)
}

// Workflow drives a single checkout through its states:
// collecting_details -> confirming_payment -> completed.
type Workflow struct {
	db           *gorm.DB
	tasks        *TaskQueue
	charger      Charger
	project      *models.Project
	maxDownloads int

	state   State
	details *BuyerDetails
}

func NewWorkflow(db *gorm.DB, tasks *TaskQueue, charger Charger, project *models.Project, maxDownloads int) *Workflow {
	if maxDownloads < 1 {
		maxDownloads = 5
	}
	return &Workflow{
		db:           db,
		tasks:        tasks,
		charger:      charger,
		project:      project,
		maxDownloads: maxDownloads,
		state:        StateCollectingDetails,
	}
}

func (w *Workflow) State() State {
	return w.state
}

func (w *Workflow) Details() *BuyerDetails {
	return w.details
}

// SubmitDetails validates the buyer details and advances to payment
// confirmation. Previously entered details are retained on failure so the
// buyer can correct individual fields.
func (w *Workflow) SubmitDetails(details BuyerDetails) error {
	if w.state != StateCollectingDetails {
		return ErrInvalidTransition
	}

	if err := utils.ValidateStruct(&details); err != nil {
		verr := &ValidationError{}
		for _, fe := range utils.GetValidationErrors(err) {
			verr.Fields = append(verr.Fields, fe.Field)
		}
		return verr
	}

	w.details = &details
	w.state = StateConfirmingPayment
	return nil
}

// Back returns from payment confirmation to the details form. Entered details
// are kept.
func (w *Workflow) Back() error {
	if w.state != StateConfirmingPayment {
		return ErrInvalidTransition
	}
	w.state = StateCollectingDetails
	return nil
}

// Reset discards all progress and returns to the details form.
func (w *Workflow) Reset() {
	w.state = StateCollectingDetails
	w.details = nil
}

// ConfirmPurchase settles payment and records the purchase. It requires an
// authenticated identity, generates a unique license key, and enqueues the
// non-critical follow-ups (download aggregate, buyer profile sync). Failures
// in those follow-ups never fail the purchase itself.
func (w *Workflow) ConfirmPurchase(ctx context.Context, identity *Identity) (*models.Purchase, error) {
	if w.state != StateConfirmingPayment {
		return nil, ErrInvalidTransition
	}
	if identity == nil || identity.UserID == uuid.Nil {
		return nil, ErrAuthenticationRequired
	}
	if w.details == nil {
		return nil, ErrInvalidTransition
	}

	description := fmt.Sprintf("Purchase of %s", w.project.Title)
	txnID, err := w.charger.Charge(ctx, w.project.Price, w.project.Currency, description)
	if err != nil {
		return nil, fmt.Errorf("payment failed: %w", err)
	}

	record, err := w.createRecord(identity, txnID)
	if err != nil {
		return nil, &PurchaseRecordError{Err: err}
	}

	w.state = StateCompleted
	w.enqueueFollowUps(record)

	return record, nil
}

// createRecord inserts the purchase row, retrying license key generation on
// the unlikely unique index collision.
func (w *Workflow) createRecord(identity *Identity, txnID string) (*models.Purchase, error) {
	var lastErr error

	for attempt := 0; attempt < licenseKeyAttempts; attempt++ {
		licenseKey, err := utils.GenerateLicenseKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate license key: %w", err)
		}

		record := &models.Purchase{
			UserID:        identity.UserID,
			ProjectID:     w.project.ID,
			Amount:        w.project.Price,
			Currency:      w.project.Currency,
			PaymentStatus: models.PaymentStatusCompleted,
			PaymentMethod: "card",
			TransactionID: txnID,
			LicenseKey:    licenseKey,
			DownloadCount: 0,
			MaxDownloads:  w.maxDownloads,
			BuyerDetails:  w.details.toJSONB(),
		}

		if err := w.db.Create(record).Error; err != nil {
			lastErr = err
			if strings.Contains(err.Error(), "duplicate key") &&
				strings.Contains(err.Error(), "license_key") {
				continue
			}
			return nil, err
		}

		return record, nil
	}

	return nil, fmt.Errorf("license key collision persisted after %d attempts: %w", licenseKeyAttempts, lastErr)
}

func (w *Workflow) enqueueFollowUps(record *models.Purchase) {
	projectID := w.project.ID
	db := w.db

	w.tasks.Enqueue(Task{
		Name: "increment_project_downloads",
		Run: func(ctx context.Context) error {
			return db.WithContext(ctx).Model(&models.Project{}).
				Where("id = ?", projectID).
				UpdateColumn("downloads", gorm.Expr("downloads + ?", 1)).Error
		},
	})

	details := *w.details
	userID := record.UserID
	w.tasks.Enqueue(Task{
		Name: "sync_buyer_profile",
		Run: func(ctx context.Context) error {
			updates := map[string]interface{}{
				"full_name": details.FullName,
			}
			if details.Phone != "" {
				updates["phone"] = details.Phone
			}
			if details.Country != "" {
				updates["country"] = details.Country
			}
			return db.WithContext(ctx).Model(&models.User{}).
				Where("id = ?", userID).
				Updates(updates).Error
		},
	})
}

// RecordDownload consumes one download from the purchase. The decrement is a
// guarded update so concurrent requests cannot exceed max_downloads.
func RecordDownload(db *gorm.DB, purchaseID, userID uuid.UUID) (*models.Purchase, error) {
	var record models.Purchase
	err := db.Where("id = ? AND user_id = ? AND payment_status = ?",
		purchaseID, userID, models.PaymentStatusCompleted).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("purchase not found")
		}
		return nil, err
	}

	result := db.Model(&models.Purchase{}).
		Where("id = ? AND download_count < max_downloads", purchaseID).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrDownloadLimitReached
	}

	// Re-read for the authoritative count; another request may have
	// incremented concurrently.
	if err := db.First(&record, "id = ?", purchaseID).Error; err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"purchase_id": purchaseID,
		"remaining":   record.DownloadsRemaining(),
	}).Info("Download recorded")

	return &record, nil
}

func (d *BuyerDetails) toJSONB() models.JSONB {
	jsonb := models.JSONB{
		"full_name": d.FullName,
		"email":     d.Email,
		"phone":     d.Phone,
		"address":   d.Address,
	}
	if d.City != "" {
		jsonb["city"] = d.City
	}
	if d.State != "" {
		jsonb["state"] = d.State
	}
	if d.Country != "" {
		jsonb["country"] = d.Country
	}
	if d.ZipCode != "" {
		jsonb["zip_code"] = d.ZipCode
	}
	if d.CompanyName != "" {
		jsonb["company_name"] = d.CompanyName
	}
	if d.VATNumber != "" {
		jsonb["vat_number"] = d.VATNumber
	}
	return jsonb
}
