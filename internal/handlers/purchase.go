// internal/handlers/purchase.go
package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codehaven/codehaven-backend/internal/config"
	"github.com/codehaven/codehaven-backend/internal/i18n"
	"github.com/codehaven/codehaven-backend/internal/purchase"
	"github.com/codehaven/codehaven-backend/internal/services"
	"github.com/codehaven/codehaven-backend/internal/utils"
)

type PurchaseHandler struct {
	db                  *gorm.DB
	cfg                 *config.Config
	tasks               *purchase.TaskQueue
	projectService      *services.ProjectService
	libraryService      *services.LibraryService
	paymentService      *services.PaymentService
	storageService      *services.StorageService
	notificationService *services.NotificationService
}

type CheckoutRequest struct {
	ProjectID    uuid.UUID             `json:"project_id" validate:"required"`
	BuyerDetails purchase.BuyerDetails `json:"buyer_details"`
}

type ValidateDetailsRequest struct {
	BuyerDetails purchase.BuyerDetails `json:"buyer_details"`
}

func NewPurchaseHandler(
	db *gorm.DB,
	cfg *config.Config,
	tasks *purchase.TaskQueue,
	projectService *services.ProjectService,
	libraryService *services.LibraryService,
	paymentService *services.PaymentService,
	storageService *services.StorageService,
	notificationService *services.NotificationService,
) *PurchaseHandler {
	return &PurchaseHandler{
		db:                  db,
		cfg:                 cfg,
		tasks:               tasks,
		projectService:      projectService,
		libraryService:      libraryService,
		paymentService:      paymentService,
		storageService:      storageService,
		notificationService: notificationService,
	}
}

// POST /purchases/validate-details
//
// Mirrors the first checkout step so the client can surface field errors
// before asking for payment confirmation.
func (h *PurchaseHandler) ValidateDetails(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req ValidateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	wf := purchase.NewWorkflow(h.db, h.tasks, h.paymentService, nil, h.cfg.Payment.MaxDownloads)
	if err := wf.SubmitDetails(req.BuyerDetails); err != nil {
		var verr *purchase.ValidationError
		if errors.As(err, &verr) {
			utils.ErrorResponse(c, 400, "VALIDATION_ERROR",
				i18n.T(lang, i18n.KeyPurchaseDetailsRequired), gin.H{"fields": verr.Fields})
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"valid": true,
		"state": wf.State(),
	})
}

// POST /purchases
//
// Runs the full checkout: validates buyer details, settles payment, and
// records the purchase with its license key.
func (h *PurchaseHandler) Checkout(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if req.ProjectID == uuid.Nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "project_id"), nil)
		return
	}

	project, err := h.projectService.GetProject(req.ProjectID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "project")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	wf := purchase.NewWorkflow(h.db, h.tasks, h.paymentService, project, h.cfg.Payment.MaxDownloads)

	if err := wf.SubmitDetails(req.BuyerDetails); err != nil {
		var verr *purchase.ValidationError
		if errors.As(err, &verr) {
			utils.ErrorResponse(c, 400, "VALIDATION_ERROR",
				i18n.T(lang, i18n.KeyPurchaseDetailsRequired), gin.H{"fields": verr.Fields})
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	identity := &purchase.Identity{UserID: userID}
	if email, exists := c.Get("user_email"); exists {
		if emailStr, ok := email.(string); ok {
			identity.Email = emailStr
		}
	}

	record, err := wf.ConfirmPurchase(c.Request.Context(), identity)
	if err != nil {
		switch {
		case errors.Is(err, purchase.ErrAuthenticationRequired):
			utils.UnauthorizedResponse(c, "")
		case strings.Contains(err.Error(), "payment failed"):
			utils.ErrorResponse(c, 402, "PAYMENT_FAILED",
				i18n.T(lang, i18n.KeyPurchasePaymentFailed), err.Error())
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	// Confirmation email rides the same follow-up queue as the other
	// side-channel work.
	if h.notificationService != nil {
		h.tasks.Enqueue(purchase.Task{
			Name: "send_purchase_confirmation",
			Run: func(ctx context.Context) error {
				return h.notificationService.SendPurchaseConfirmation(record)
			},
		})
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyPurchaseCompleted),
		"purchase": record,
		"state":    wf.State(),
	})
}

// POST /purchases/:id/download
//
// Consumes one download and returns a short-lived link to the project
// archive.
func (h *PurchaseHandler) Download(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	idStr := c.Param("id")
	purchaseID, err := uuid.Parse(idStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid purchase ID", nil)
		return
	}

	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	record, err := purchase.RecordDownload(h.db, purchaseID, userID)
	if err != nil {
		switch {
		case errors.Is(err, purchase.ErrDownloadLimitReached):
			utils.ErrorResponse(c, 403, "DOWNLOAD_LIMIT",
				i18n.T(lang, i18n.KeyPurchaseDownloadLimit), nil)
		case strings.Contains(err.Error(), "not found"):
			utils.NotFoundResponse(c, "purchase")
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	file, err := h.projectService.GetMainFile(record.ProjectID)
	if err != nil {
		utils.NotFoundResponse(c, "file")
		return
	}

	url, err := h.storageService.GeneratePresignedURL(file.FilePath, 15*time.Minute)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":             i18n.T(lang, i18n.KeyFileDownloadReady),
		"download_url":        url,
		"expires_in":          int((15 * time.Minute).Seconds()),
		"downloads_remaining": record.DownloadsRemaining(),
	})
}

// POST /purchases/payment-intent
func (h *PurchaseHandler) CreatePaymentIntent(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	intent, err := h.paymentService.CreatePaymentIntent(userID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "project")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"payment_intent": intent,
	})
}
