// internal/services/contact_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codehaven/codehaven-backend/internal/models"
	"github.com/codehaven/codehaven-backend/internal/utils"
)

type ContactService struct {
	db                  *gorm.DB
	notificationService *NotificationService
}

type CreateContactRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=100"`
	Email          string `json:"email" validate:"required,email"`
	ProjectType    string `json:"project_type" validate:"required,max=100"`
	TechStack      string `json:"tech_stack,omitempty" validate:"omitempty,max=255"`
	ProjectDetails string `json:"project_details" validate:"required,min=20"`
	Budget         string `json:"budget,omitempty" validate:"omitempty,max=100"`
	Deadline       string `json:"deadline,omitempty" validate:"omitempty,max=100"`
}

type UpdateContactRequest struct {
	Status     models.SubmissionStatus   `json:"status,omitempty"`
	Priority   models.SubmissionPriority `json:"priority,omitempty"`
	AdminNotes string                    `json:"admin_notes,omitempty"`
}

type ContactSearchParams struct {
	utils.PaginationParams
	Status   *models.SubmissionStatus   `json:"status,omitempty"`
	Priority *models.SubmissionPriority `json:"priority,omitempty"`
}

func NewContactService(db *gorm.DB, notificationService *NotificationService) *ContactService {
	return &ContactService{
		db:                  db,
		notificationService: notificationService,
	}
}

func (s *ContactService) CreateSubmission(req *CreateContactRequest) (*models.ContactSubmission, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	submission := &models.ContactSubmission{
		Name:           req.Name,
		Email:          req.Email,
		ProjectType:    req.ProjectType,
		TechStack:      req.TechStack,
		ProjectDetails: req.ProjectDetails,
		Budget:         req.Budget,
		Deadline:       req.Deadline,
		Status:         models.SubmissionStatusNew,
		Priority:       classifyPriority(req),
	}

	if err := s.db.Create(submission).Error; err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	// Acknowledge receipt (async)
	if s.notificationService != nil {
		go s.notificationService.SendContactAcknowledgement(submission)
	}

	return submission, nil
}

// classifyPriority gives tight deadlines and large budgets a head start in
// the triage queue.
func classifyPriority(req *CreateContactRequest) models.SubmissionPriority {
	deadline := strings.ToLower(req.Deadline)
	if strings.Contains(deadline, "urgent") || strings.Contains(deadline, "asap") ||
		strings.Contains(deadline, "week") {
		return models.SubmissionPriorityHigh
	}

	budget := strings.ToLower(req.Budget)
	if strings.Contains(budget, "lakh") || strings.Contains(budget, "100k") ||
		strings.Contains(budget, "50k") {
		return models.SubmissionPriorityHigh
	}

	if req.Budget == "" && req.Deadline == "" {
		return models.SubmissionPriorityLow
	}

	return models.SubmissionPriorityMedium
}

func (s *ContactService) GetSubmission(id uuid.UUID) (*models.ContactSubmission, error) {
	var submission models.ContactSubmission
	if err := s.db.Preload("Resolver").First(&submission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("submission not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &submission, nil
}

func (s *ContactService) SearchSubmissions(params ContactSearchParams) ([]models.ContactSubmission, int64, error) {
	query := s.db.Model(&models.ContactSubmission{}).Preload("Resolver")

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.Priority != nil {
		query = query.Where("priority = ?", *params.Priority)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(project_details) LIKE ?",
			searchTerm, searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "priority", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var submissions []models.ContactSubmission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	return submissions, total, nil
}

func (s *ContactService) UpdateSubmission(id, adminID uuid.UUID, req *UpdateContactRequest) (*models.ContactSubmission, error) {
	var submission models.ContactSubmission
	if err := s.db.First(&submission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("submission not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Status != "" {
		updates["status"] = req.Status

		if req.Status == models.SubmissionStatusClosed {
			now := time.Now()
			updates["resolved_by"] = adminID
			updates["resolved_at"] = now
		}
	}
	if req.Priority != "" {
		updates["priority"] = req.Priority
	}
	if req.AdminNotes != "" {
		updates["admin_notes"] = req.AdminNotes
	}

	if len(updates) > 0 {
		if err := s.db.Model(&submission).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update submission: %w", err)
		}
	}

	s.db.Preload("Resolver").First(&submission, id)

	return &submission, nil
}

func (s *ContactService) GetQueueStats() (map[string]int64, error) {
	stats := make(map[string]int64)

	statuses := []models.SubmissionStatus{
		models.SubmissionStatusNew,
		models.SubmissionStatusInReview,
		models.SubmissionStatusQuoted,
		models.SubmissionStatusClosed,
	}

	for _, status := range statuses {
		var count int64
		if err := s.db.Model(&models.ContactSubmission{}).
			Where("status = ?", status).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count submissions: %w", err)
		}
		stats[string(status)] = count
	}

	return stats, nil
}
