// internal/handlers/contact.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codehaven/codehaven-backend/internal/i18n"
	"github.com/codehaven/codehaven-backend/internal/models"
	"github.com/codehaven/codehaven-backend/internal/services"
	"github.com/codehaven/codehaven-backend/internal/utils"
)

type ContactHandler struct {
	contactService *services.ContactService
}

func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
	}
}

// POST /contact
func (h *ContactHandler) CreateSubmission(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	submission, err := h.contactService.CreateSubmission(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyContactReceived),
		"submission": gin.H{"id": submission.ID, "status": submission.Status},
	})
}

// Admin triage

// GET /admin/contact
func (h *ContactHandler) GetSubmissions(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.ContactSearchParams{
		PaginationParams: params,
	}

	if status := c.Query("status"); status != "" {
		s := models.SubmissionStatus(status)
		searchParams.Status = &s
	}

	if priority := c.Query("priority"); priority != "" {
		p := models.SubmissionPriority(priority)
		searchParams.Priority = &p
	}

	submissions, total, err := h.contactService.SearchSubmissions(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(submissions, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /admin/contact/stats
func (h *ContactHandler) GetQueueStats(c *gin.Context) {
	stats, err := h.contactService.GetQueueStats()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}

// GET /admin/contact/:id
func (h *ContactHandler) GetSubmission(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid submission ID", nil)
		return
	}

	submission, err := h.contactService.GetSubmission(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "contact")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"submission": submission,
	})
}

// PATCH /admin/contact/:id
func (h *ContactHandler) UpdateSubmission(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid submission ID", nil)
		return
	}

	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	adminID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	submission, err := h.contactService.UpdateSubmission(id, adminID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "contact")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyContactUpdated),
		"submission": submission,
	})
}
