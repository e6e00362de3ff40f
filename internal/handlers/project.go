// internal/handlers/project.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/codehaven/codehaven-backend/internal/i18n"
	"github.com/codehaven/codehaven-backend/internal/models"
	"github.com/codehaven/codehaven-backend/internal/services"
	"github.com/codehaven/codehaven-backend/internal/utils"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	libraryService *services.LibraryService
	storageService *services.StorageService
}

func NewProjectHandler(projectService *services.ProjectService, libraryService *services.LibraryService, storageService *services.StorageService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		libraryService: libraryService,
		storageService: storageService,
	}
}

// GET /projects
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	// Build search parameters
	searchParams := services.ProjectSearchParams{
		PaginationParams: params,
	}

	// Parse additional filters
	if difficulty := c.Query("difficulty"); difficulty != "" {
		d := models.Difficulty(difficulty)
		searchParams.Difficulty = &d
	}

	if priceMinStr := c.Query("price_min"); priceMinStr != "" {
		if priceMin, err := strconv.ParseInt(priceMinStr, 10, 64); err == nil {
			searchParams.PriceMin = &priceMin
		}
	}

	if priceMaxStr := c.Query("price_max"); priceMaxStr != "" {
		if priceMax, err := strconv.ParseInt(priceMaxStr, 10, 64); err == nil {
			searchParams.PriceMax = &priceMax
		}
	}

	if techStack := c.Query("tech_stack"); techStack != "" {
		searchParams.TechStack = strings.Split(techStack, ",")
	}

	if tags := c.Query("tags"); tags != "" {
		searchParams.Tags = strings.Split(tags, ",")
	}

	if featuredStr := c.Query("featured"); featuredStr != "" {
		if featured, err := strconv.ParseBool(featuredStr); err == nil {
			searchParams.Featured = &featured
		}
	}

	// Search projects
	projects, total, err := h.projectService.SearchProjects(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(projects, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /projects/featured
func (h *ProjectHandler) GetFeaturedProjects(c *gin.Context) {
	limit := 8
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	projects, err := h.projectService.GetFeaturedProjects(limit)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"projects": projects,
	})
}

// GET /projects/trending
func (h *ProjectHandler) GetTrendingProjects(c *gin.Context) {
	limit := 8
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	projects, err := h.projectService.GetTrendingProjects(limit)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"projects": projects,
	})
}

// GET /projects/categories
func (h *ProjectHandler) GetCategories(c *gin.Context) {
	categories, err := h.projectService.GetCategories()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"categories": categories,
	})
}

// GET /projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid project ID", nil)
		return
	}

	project, err := h.projectService.GetProject(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "project")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	// Tell signed-in buyers whether they already own it
	owned := false
	if userIDStr, exists := utils.GetUserIDFromContext(c); exists {
		if userID, err := uuid.Parse(userIDStr); err == nil {
			owned, _ = h.libraryService.HasPurchased(userID, id)
		}
	}

	utils.SuccessResponse(c, gin.H{
		"project":   project,
		"purchased": owned,
	})
}

// GET /projects/:id/reviews
func (h *ProjectHandler) GetProjectReviews(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid project ID", nil)
		return
	}

	params := utils.GetPaginationParams(c)

	reviews, total, err := h.libraryService.GetProjectReviews(id, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(reviews, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /projects/:id/reviews
func (h *ProjectHandler) CreateReview(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid project ID", nil)
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

	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	review, err := h.libraryService.CreateReview(userID, id, &req)
	if err != nil {
		if strings.Contains(err.Error(), "already reviewed") {
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyReviewExists))
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyReviewCreated),
		"review":  review,
	})
}

// Admin catalog management

// POST /admin/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	project, err := h.projectService.CreateProject(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProjectCreated),
		"project": project,
	})
}

// PUT /admin/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid project ID", nil)
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	project, err := h.projectService.UpdateProject(id, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "project")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProjectUpdated),
		"project": project,
	})
}

// DELETE /admin/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid project ID", nil)
		return
	}

	if err := h.projectService.DeleteProject(id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "project")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProjectDeleted),
	})
}

// POST /admin/projects/:id/files
func (h *ProjectHandler) UploadProjectFile(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid project ID", nil)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}
	defer file.Close()

	isMain, _ := strconv.ParseBool(c.DefaultPostForm("is_main_file", "false"))

	category := c.DefaultPostForm("category", "project_files")
	if category != "project_files" && category != "project_images" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "category"), nil)
		return
	}

	if category == "project_images" {
		if err := h.storageService.ValidateImage(file); err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
	}

	options := h.storageService.GetDefaultUploadOptions(category)
	result, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	record, err := h.projectService.AddProjectFile(id, header.Filename, result.Key, result.MimeType, result.Size, isMain)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "project")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, gin.H{
		"file": record,
	})
}

// DELETE /admin/projects/:id/files/:fileId
func (h *ProjectHandler) DeleteProjectFile(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid project ID", nil)
		return
	}

	fileID, err := uuid.Parse(c.Param("fileId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID", nil)
		return
	}

	file, err := h.projectService.RemoveProjectFile(projectID, fileID)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "not found"):
			utils.NotFoundResponse(c, "file")
		case strings.Contains(err.Error(), "main project file"):
			utils.ConflictResponse(c, err.Error())
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	if err := h.storageService.DeleteFile(file.FilePath); err != nil {
		logrus.WithError(err).WithField("key", file.FilePath).Warn("Failed to delete stored object")
	}

	utils.SuccessResponse(c, gin.H{
		"message": "File deleted",
	})
}
