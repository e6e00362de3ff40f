// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/codehaven/codehaven-backend/internal/models"
	"github.com/codehaven/codehaven-backend/internal/utils"
)

type AdminService struct {
	db                  *gorm.DB
	notificationService *NotificationService
}

type AdminDashboardStats struct {
	TotalUsers         int64            `json:"total_users"`
	ActiveUsers        int64            `json:"active_users"`
	NewUsersThisMonth  int64            `json:"new_users_this_month"`
	TotalRevenue       int64            `json:"total_revenue"` // minor currency units
	MonthlyRevenue     int64            `json:"monthly_revenue"`
	TotalProjects      int64            `json:"total_projects"`
	FeaturedProjects   int64            `json:"featured_projects"`
	TotalPurchases     int64            `json:"total_purchases"`
	MonthlyPurchases   int64            `json:"monthly_purchases"`
	OpenContactQueue   int64            `json:"open_contact_queue"`
	UserGrowth         float64          `json:"user_growth"`
	RevenueGrowth      float64          `json:"revenue_growth"`
	TopProjects        []models.Project `json:"top_projects"`
}

type AdminUserFilter struct {
	utils.PaginationParams
	Role          *models.UserRole   `json:"role,omitempty"`
	Status        *models.UserStatus `json:"status,omitempty"`
	CreatedAfter  *time.Time         `json:"created_after,omitempty"`
	CreatedBefore *time.Time         `json:"created_before,omitempty"`
}

type AdminPurchaseFilter struct {
	utils.PaginationParams
	UserID        *uuid.UUID            `json:"user_id,omitempty"`
	ProjectID     *uuid.UUID            `json:"project_id,omitempty"`
	PaymentStatus *models.PaymentStatus `json:"payment_status,omitempty"`
	CreatedAfter  *time.Time            `json:"created_after,omitempty"`
	CreatedBefore *time.Time            `json:"created_before,omitempty"`
}

type AuditLogFilter struct {
	utils.PaginationParams
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	Action       string     `json:"action,omitempty"`
	ResourceType string     `json:"resource_type,omitempty"`
}

func NewAdminService(db *gorm.DB, notificationService *NotificationService) *AdminService {
	return &AdminService{
		db:                  db,
		notificationService: notificationService,
	}
}

// Dashboard Statistics
func (s *AdminService) GetDashboardStats() (*AdminDashboardStats, error) {
	stats := &AdminDashboardStats{}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	// User statistics
	s.db.Model(&models.User{}).Count(&stats.TotalUsers)
	s.db.Model(&models.User{}).Where("status = ?", models.UserStatusActive).Count(&stats.ActiveUsers)
	s.db.Model(&models.User{}).Where("created_at >= ?", monthStart).Count(&stats.NewUsersThisMonth)

	// Revenue statistics
	s.db.Model(&models.Purchase{}).
		Where("payment_status = ?", models.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalRevenue)

	s.db.Model(&models.Purchase{}).
		Where("payment_status = ? AND created_at >= ?", models.PaymentStatusCompleted, monthStart).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.MonthlyRevenue)

	// Catalog statistics
	s.db.Model(&models.Project{}).Count(&stats.TotalProjects)
	s.db.Model(&models.Project{}).Where("featured = ?", true).Count(&stats.FeaturedProjects)

	// Purchase statistics
	s.db.Model(&models.Purchase{}).
		Where("payment_status = ?", models.PaymentStatusCompleted).
		Count(&stats.TotalPurchases)
	s.db.Model(&models.Purchase{}).
		Where("payment_status = ? AND created_at >= ?", models.PaymentStatusCompleted, monthStart).
		Count(&stats.MonthlyPurchases)

	// Contact queue
	s.db.Model(&models.ContactSubmission{}).
		Where("status IN ?", []models.SubmissionStatus{
			models.SubmissionStatusNew,
			models.SubmissionStatusInReview,
		}).
		Count(&stats.OpenContactQueue)

	// Growth calculations
	var lastMonthUsers int64
	s.db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", lastMonthStart, monthStart).
		Count(&lastMonthUsers)

	var lastMonthRevenue int64
	s.db.Model(&models.Purchase{}).
		Where("payment_status = ? AND created_at >= ? AND created_at < ?",
			models.PaymentStatusCompleted, lastMonthStart, monthStart).
		Select("COALESCE(SUM(amount), 0)").Scan(&lastMonthRevenue)

	if lastMonthUsers > 0 {
		stats.UserGrowth = float64(stats.NewUsersThisMonth-lastMonthUsers) / float64(lastMonthUsers) * 100
	}

	if lastMonthRevenue > 0 {
		stats.RevenueGrowth = float64(stats.MonthlyRevenue-lastMonthRevenue) / float64(lastMonthRevenue) * 100
	}

	// Best sellers for the dashboard widget
	s.db.Model(&models.Project{}).
		Order("downloads DESC, rating DESC").
		Limit(5).
		Find(&stats.TopProjects)

	return stats, nil
}

// User Management
func (s *AdminService) GetUsers(filter AdminUserFilter) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	// Apply filters
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		searchTerm := "%" + filter.Search + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", searchTerm, searchTerm)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	// Apply sorting and pagination
	allowedSortFields := []string{"created_at", "updated_at", "full_name", "email", "role", "status"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	// Execute query
	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

func (s *AdminService) UpdateUserStatus(userID uuid.UUID, status models.UserStatus, adminID uuid.UUID, reason string) error {
	// Find user
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("user not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	// Admins cannot suspend each other
	if user.Role == models.UserRoleAdmin && user.ID != adminID {
		return errors.New("cannot modify another admin's status")
	}

	oldStatus := user.Status
	user.Status = status

	if err := s.db.Save(&user).Error; err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	go s.createAuditLog(adminID, "UPDATE_USER_STATUS", "user", &userID, models.JSONB{
		"old_status": oldStatus,
		"new_status": status,
		"reason":     reason,
	})

	if s.notificationService != nil {
		go s.notificationService.SendUserStatusChangeNotification(&user, oldStatus, reason)
	}

	return nil
}

// Purchases
func (s *AdminService) GetPurchases(filter AdminPurchaseFilter) ([]models.Purchase, int64, error) {
	query := s.db.Model(&models.Purchase{}).Preload("User").Preload("Project")

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count purchases: %w", err)
	}

	allowedSortFields := []string{"created_at", "amount", "payment_status"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var purchases []models.Purchase
	if err := query.Find(&purchases).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch purchases: %w", err)
	}

	return purchases, total, nil
}

// Audit trail
func (s *AdminService) GetAuditLogs(filter AuditLogFilter) ([]models.AuditLog, int64, error) {
	query := s.db.Model(&models.AuditLog{}).Preload("User")

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	allowedSortFields := []string{"created_at", "action", "resource_type"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	return logs, total, nil
}

func (s *AdminService) createAuditLog(adminID uuid.UUID, action, resourceType string, resourceID *uuid.UUID, values models.JSONB) {
	log := &models.AuditLog{
		UserID:       &adminID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		NewValues:    values,
	}

	if err := s.db.Create(log).Error; err != nil {
		logrus.WithError(err).Error("Failed to create audit log")
	}
}
