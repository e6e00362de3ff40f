// internal/services/project_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/codehaven/codehaven-backend/internal/models"
	"github.com/codehaven/codehaven-backend/internal/utils"
)

type ProjectService struct {
	db *gorm.DB
}

type CreateProjectRequest struct {
	Title           string   `json:"title" validate:"required,min=3,max=255"`
	Description     string   `json:"description" validate:"required,min=10"`
	LongDescription string   `json:"long_description,omitempty"`
	Category        string   `json:"category" validate:"required"`
	Price           int64    `json:"price" validate:"required,min=0"`
	Currency        string   `json:"currency,omitempty" validate:"omitempty,len=3"`
	TechStack       []string `json:"tech_stack,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Features        []string `json:"features,omitempty"`
	Images          []string `json:"images,omitempty"`
	DemoURL         string   `json:"demo_url,omitempty" validate:"omitempty,url"`
	GithubURL       string   `json:"github_url,omitempty" validate:"omitempty,url"`
	License         string   `json:"license,omitempty"`
	Difficulty      string   `json:"difficulty,omitempty"`
	Version         string   `json:"version,omitempty"`
	Featured        bool     `json:"featured,omitempty"`
}

type UpdateProjectRequest struct {
	Title           string   `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	Description     string   `json:"description,omitempty" validate:"omitempty,min=10"`
	LongDescription string   `json:"long_description,omitempty"`
	Category        string   `json:"category,omitempty"`
	Price           *int64   `json:"price,omitempty" validate:"omitempty,min=0"`
	TechStack       []string `json:"tech_stack,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Features        []string `json:"features,omitempty"`
	Images          []string `json:"images,omitempty"`
	DemoURL         string   `json:"demo_url,omitempty" validate:"omitempty,url"`
	GithubURL       string   `json:"github_url,omitempty" validate:"omitempty,url"`
	License         string   `json:"license,omitempty"`
	Difficulty      string   `json:"difficulty,omitempty"`
	Version         string   `json:"version,omitempty"`
	Featured        *bool    `json:"featured,omitempty"`
}

type ProjectSearchParams struct {
	utils.PaginationParams
	Difficulty *models.Difficulty `json:"difficulty,omitempty"`
	PriceMin   *int64             `json:"price_min,omitempty"`
	PriceMax   *int64             `json:"price_max,omitempty"`
	TechStack  []string           `json:"tech_stack,omitempty"`
	Tags       []string           `json:"tags,omitempty"`
	Featured   *bool              `json:"featured,omitempty"`
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

func (s *ProjectService) CreateProject(req *CreateProjectRequest) (*models.Project, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	project := &models.Project{
		Title:           req.Title,
		Description:     req.Description,
		LongDescription: req.LongDescription,
		Category:        req.Category,
		Price:           req.Price,
		Currency:        req.Currency,
		TechStack:       pqArray(req.TechStack),
		Tags:            pqArray(req.Tags),
		Features:        pqArray(req.Features),
		Images:          pqArray(req.Images),
		DemoURL:         req.DemoURL,
		GithubURL:       req.GithubURL,
		Version:         req.Version,
		Featured:        req.Featured,
	}

	if req.Currency == "" {
		project.Currency = "INR"
	}
	if req.License != "" {
		project.License = models.LicenseType(req.License)
	}
	if req.Difficulty != "" {
		project.Difficulty = models.Difficulty(req.Difficulty)
	}
	if req.Version == "" {
		project.Version = "1.0.0"
	}

	if err := s.db.Create(project).Error; err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

func (s *ProjectService) GetProject(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := s.db.Preload("Files").First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("project not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &project, nil
}

func (s *ProjectService) UpdateProject(id uuid.UUID, req *UpdateProjectRequest) (*models.Project, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("project not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Prepare updates
	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.LongDescription != "" {
		updates["long_description"] = req.LongDescription
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.TechStack != nil {
		updates["tech_stack"] = pqArray(req.TechStack)
	}
	if req.Tags != nil {
		updates["tags"] = pqArray(req.Tags)
	}
	if req.Features != nil {
		updates["features"] = pqArray(req.Features)
	}
	if req.Images != nil {
		updates["images"] = pqArray(req.Images)
	}
	if req.DemoURL != "" {
		updates["demo_url"] = req.DemoURL
	}
	if req.GithubURL != "" {
		updates["github_url"] = req.GithubURL
	}
	if req.License != "" {
		updates["license"] = req.License
	}
	if req.Difficulty != "" {
		updates["difficulty"] = req.Difficulty
	}
	if req.Version != "" {
		updates["version"] = req.Version
	}
	if req.Featured != nil {
		updates["featured"] = *req.Featured
	}

	// Apply updates
	if err := s.db.Model(&project).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.db.Preload("Files").First(&project, id)

	return &project, nil
}

func (s *ProjectService) DeleteProject(id uuid.UUID) error {
	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("project not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	// Check if project has been sold
	var salesCount int64
	if err := s.db.Model(&models.Purchase{}).
		Where("project_id = ? AND payment_status = ?", id, models.PaymentStatusCompleted).
		Count(&salesCount).Error; err != nil {
		return fmt.Errorf("failed to check purchases: %w", err)
	}

	if salesCount > 0 {
		return errors.New("cannot delete project with completed purchases")
	}

	// Soft delete
	if err := s.db.Delete(&project).Error; err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

func (s *ProjectService) SearchProjects(params ProjectSearchParams) ([]models.Project, int64, error) {
	query := s.db.Model(&models.Project{})

	// Apply filters
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.Difficulty != nil {
		query = query.Where("difficulty = ?", *params.Difficulty)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	if params.PriceMin != nil {
		query = query.Where("price >= ?", *params.PriceMin)
	}

	if params.PriceMax != nil {
		query = query.Where("price <= ?", *params.PriceMax)
	}

	if len(params.TechStack) > 0 {
		query = query.Where("tech_stack && ?", pqArray(params.TechStack))
	}

	if len(params.Tags) > 0 {
		query = query.Where("tags && ?", pqArray(params.Tags))
	}

	if params.Featured != nil {
		query = query.Where("featured = ?", *params.Featured)
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	// Apply sorting
	allowedSortFields := []string{"created_at", "updated_at", "title", "price", "downloads", "rating"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)

	// Apply pagination
	query = utils.ApplyPagination(query, params.PaginationParams)

	// Execute query
	var projects []models.Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch projects: %w", err)
	}

	return projects, total, nil
}

func (s *ProjectService) GetFeaturedProjects(limit int) ([]models.Project, error) {
	var projects []models.Project
	if err := s.db.Where("featured = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch featured projects: %w", err)
	}

	return projects, nil
}

func (s *ProjectService) GetTrendingProjects(limit int) ([]models.Project, error) {
	var projects []models.Project
	if err := s.db.
		Order("downloads DESC, rating DESC, review_count DESC").
		Limit(limit).
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch trending projects: %w", err)
	}

	return projects, nil
}

func (s *ProjectService) GetCategories() ([]string, error) {
	var categories []string
	if err := s.db.Model(&models.Project{}).
		Distinct("category").
		Where("category <> ''").
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	return categories, nil
}

func (s *ProjectService) AddProjectFile(projectID uuid.UUID, fileName, filePath, fileType string, fileSize int64, isMain bool) (*models.ProjectFile, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("project not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Only one main file per project
	if isMain {
		if err := s.db.Model(&models.ProjectFile{}).
			Where("project_id = ?", projectID).
			UpdateColumn("is_main_file", false).Error; err != nil {
			return nil, fmt.Errorf("failed to clear main file flag: %w", err)
		}
	}

	file := &models.ProjectFile{
		ProjectID:  projectID,
		FileName:   fileName,
		FilePath:   filePath,
		FileSize:   fileSize,
		FileType:   fileType,
		IsMainFile: isMain,
	}

	if err := s.db.Create(file).Error; err != nil {
		return nil, fmt.Errorf("failed to create project file: %w", err)
	}

	return file, nil
}

func (s *ProjectService) GetMainFile(projectID uuid.UUID) (*models.ProjectFile, error) {
	var file models.ProjectFile
	err := s.db.Where("project_id = ? AND is_main_file = ?", projectID, true).
		First(&file).Error
	if err == nil {
		return &file, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Fall back to the newest file when no main file is flagged
	err = s.db.Where("project_id = ?", projectID).
		Order("created_at DESC").
		First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("file not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &file, nil
}

// RemoveProjectFile deletes a secondary file record. The main archive cannot
// be removed while purchases still point at it.
func (s *ProjectService) RemoveProjectFile(projectID, fileID uuid.UUID) (*models.ProjectFile, error) {
	var file models.ProjectFile
	err := s.db.Where("id = ? AND project_id = ?", fileID, projectID).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("file not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if file.IsMainFile {
		return nil, errors.New("cannot remove the main project file")
	}

	if err := s.db.Unscoped().Delete(&file).Error; err != nil {
		return nil, fmt.Errorf("failed to delete project file: %w", err)
	}

	return &file, nil
}

func pqArray(items []string) pq.StringArray {
	return pq.StringArray(items)
}
