// internal/services/library_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codehaven/codehaven-backend/internal/models"
	"github.com/codehaven/codehaven-backend/internal/utils"
)

// LibraryService covers everything a signed-in customer owns or tracks:
// purchases, wishlist, cart, reviews, and the profile itself.
type LibraryService struct {
	db *gorm.DB
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

type UpdateProfileRequest struct {
	FullName  string `json:"full_name,omitempty" validate:"omitempty,min=2,max=100"`
	AvatarURL string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
	Country   string `json:"country,omitempty" validate:"omitempty,max=100"`
}

func NewLibraryService(db *gorm.DB) *LibraryService {
	return &LibraryService{db: db}
}

func (s *LibraryService) GetPurchases(userID uuid.UUID, params utils.PaginationParams) ([]models.Purchase, int64, error) {
	query := s.db.Model(&models.Purchase{}).
		Where("user_id = ? AND payment_status = ?", userID, models.PaymentStatusCompleted).
		Preload("Project")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count purchases: %w", err)
	}

	allowedSortFields := []string{"created_at", "amount"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var purchases []models.Purchase
	if err := query.Find(&purchases).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch purchases: %w", err)
	}

	return purchases, total, nil
}

func (s *LibraryService) GetPurchase(userID, purchaseID uuid.UUID) (*models.Purchase, error) {
	var record models.Purchase
	err := s.db.Preload("Project").
		Where("id = ? AND user_id = ?", purchaseID, userID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("purchase not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &record, nil
}

func (s *LibraryService) HasPurchased(userID, projectID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.Purchase{}).
		Where("user_id = ? AND project_id = ? AND payment_status = ?",
			userID, projectID, models.PaymentStatusCompleted).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}

	return count > 0, nil
}

// Wishlist

func (s *LibraryService) GetWishlist(userID uuid.UUID, params utils.PaginationParams) ([]models.Wishlist, int64, error) {
	query := s.db.Model(&models.Wishlist{}).
		Where("user_id = ?", userID).
		Preload("Project")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count wishlist: %w", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var items []models.Wishlist
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch wishlist: %w", err)
	}

	return items, total, nil
}

// ToggleWishlist adds the project if absent, removes it if present, and
// reports whether it is now in the wishlist.
func (s *LibraryService) ToggleWishlist(userID, projectID uuid.UUID) (bool, error) {
	if err := s.ensureProjectExists(projectID); err != nil {
		return false, err
	}

	var existing models.Wishlist
	err := s.db.Where("user_id = ? AND project_id = ?", userID, projectID).
		First(&existing).Error
	if err == nil {
		if err := s.db.Unscoped().Delete(&existing).Error; err != nil {
			return true, fmt.Errorf("failed to remove from wishlist: %w", err)
		}
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("database error: %w", err)
	}

	item := &models.Wishlist{UserID: userID, ProjectID: projectID}
	if err := s.db.Create(item).Error; err != nil {
		return false, fmt.Errorf("failed to add to wishlist: %w", err)
	}

	return true, nil
}

// Cart

func (s *LibraryService) GetCart(userID uuid.UUID) ([]models.CartItem, int64, error) {
	var items []models.CartItem
	err := s.db.Where("user_id = ?", userID).
		Preload("Project").
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch cart: %w", err)
	}

	var total int64
	for _, item := range items {
		total += item.Project.Price
	}

	return items, total, nil
}

func (s *LibraryService) AddToCart(userID, projectID uuid.UUID) (*models.CartItem, error) {
	if err := s.ensureProjectExists(projectID); err != nil {
		return nil, err
	}

	owned, err := s.HasPurchased(userID, projectID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, errors.New("project already purchased")
	}

	var existing models.CartItem
	err = s.db.Where("user_id = ? AND project_id = ?", userID, projectID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	item := &models.CartItem{UserID: userID, ProjectID: projectID}
	if err := s.db.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	s.db.Preload("Project").First(item, item.ID)

	return item, nil
}

func (s *LibraryService) RemoveFromCart(userID, projectID uuid.UUID) error {
	result := s.db.Unscoped().
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove from cart: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("cart item not found")
	}

	return nil
}

func (s *LibraryService) ClearCart(userID uuid.UUID) error {
	if err := s.db.Unscoped().Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}

// Reviews

func (s *LibraryService) GetProjectReviews(projectID uuid.UUID, params utils.PaginationParams) ([]models.Review, int64, error) {
	query := s.db.Model(&models.Review{}).
		Where("project_id = ?", projectID).
		Preload("User")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	allowedSortFields := []string{"created_at", "rating"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	return reviews, total, nil
}

// CreateReview stores the review and refreshes the project's rating
// aggregate. Only buyers of the project may review it, once each.
func (s *LibraryService) CreateReview(userID, projectID uuid.UUID, req *CreateReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	owned, err := s.HasPurchased(userID, projectID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, errors.New("only buyers can review a project")
	}

	var existing int64
	s.db.Model(&models.Review{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&existing)
	if existing > 0 {
		return nil, errors.New("project already reviewed")
	}

	review := &models.Review{
		ProjectID: projectID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := s.db.Create(review).Error; err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err := s.refreshProjectRating(projectID); err != nil {
		return nil, err
	}

	s.db.Preload("User").First(review, review.ID)

	return review, nil
}

func (s *LibraryService) DeleteReview(userID, reviewID uuid.UUID) error {
	var review models.Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("review not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if review.UserID != userID {
		return errors.New("unauthorized to delete this review")
	}

	if err := s.db.Unscoped().Delete(&review).Error; err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	return s.refreshProjectRating(review.ProjectID)
}

func (s *LibraryService) refreshProjectRating(projectID uuid.UUID) error {
	var stats struct {
		Avg   float64
		Count int64
	}

	err := s.db.Model(&models.Review{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Scan(&stats).Error
	if err != nil {
		return fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	err = s.db.Model(&models.Project{}).
		Where("id = ?", projectID).
		Updates(map[string]interface{}{
			"rating":       stats.Avg,
			"review_count": stats.Count,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update project rating: %w", err)
	}

	return nil
}

// Profile

func (s *LibraryService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.FullName != "" {
		updates["full_name"] = req.FullName
	}
	if req.AvatarURL != "" {
		updates["avatar_url"] = req.AvatarURL
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Country != "" {
		updates["country"] = req.Country
	}

	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return &user, nil
}

func (s *LibraryService) ensureProjectExists(projectID uuid.UUID) error {
	var count int64
	if err := s.db.Model(&models.Project{}).
		Where("id = ?", projectID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count == 0 {
		return errors.New("project not found")
	}

	return nil
}
