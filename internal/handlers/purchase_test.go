// internal/handlers/purchase_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codehaven/codehaven-backend/internal/config"
	"github.com/codehaven/codehaven-backend/internal/purchase"
	"github.com/codehaven/codehaven-backend/internal/services"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func newCheckoutRouter(t *testing.T, db *gorm.DB, tasks *purchase.TaskQueue, userID uuid.UUID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Payment.MaxDownloads = 5
	cfg.Frontend.BaseURL = "http://localhost:3000"

	projectService := services.NewProjectService(db)
	libraryService := services.NewLibraryService(db)
	notificationService := services.NewNotificationService(db, cfg)
	paymentService := services.NewPaymentService(db, cfg, notificationService)
	storageService, err := services.NewStorageService(cfg)
	require.NoError(t, err)

	handler := NewPurchaseHandler(db, cfg, tasks, projectService, libraryService,
		paymentService, storageService, notificationService)

	r := gin.New()
	r.POST("/purchases", func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Set("user_email", "asha@example.com")
	}, handler.Checkout)

	return r
}

func TestCheckoutRunsFollowUpsThroughQueue(t *testing.T) {
	db, mock := newMockDB(t)
	tasks := purchase.NewTaskQueue(8)
	userID := uuid.New()
	projectID := uuid.New()

	projectRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "title", "price", "currency"}).
			AddRow(projectID.String(), "React Admin Dashboard", 249900, "INR")
	}

	mock.ExpectQuery(`SELECT \* FROM "projects"`).WillReturnRows(projectRows())
	mock.ExpectQuery(`SELECT \* FROM "project_files"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "purchases"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectExec(`UPDATE "projects" SET "downloads"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Confirmation email runs on the queue worker after the other follow-ups.
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email"}).
			AddRow(userID.String(), "Asha Verma", "asha@example.com"))
	mock.ExpectQuery(`SELECT \* FROM "projects"`).WillReturnRows(projectRows())

	r := newCheckoutRouter(t, db, tasks, userID)

	body, _ := json.Marshal(gin.H{
		"project_id": projectID,
		"buyer_details": gin.H{
			"full_name": "Asha Verma",
			"email":     "asha@example.com",
			"phone":     "+91 98765 43210",
			"address":   "42 MG Road, Indiranagar",
		},
	})
	req, _ := http.NewRequest("POST", "/purchases", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["success"].(bool))

	data := response["data"].(map[string]interface{})
	assert.Equal(t, string(purchase.StateCompleted), data["state"])

	record := data["purchase"].(map[string]interface{})
	assert.Regexp(t, `^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`, record["license_key"])

	tasks.Close()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutRejectsIncompleteDetails(t *testing.T) {
	db, mock := newMockDB(t)
	tasks := purchase.NewTaskQueue(8)
	t.Cleanup(tasks.Close)
	userID := uuid.New()
	projectID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "projects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price", "currency"}).
			AddRow(projectID.String(), "React Admin Dashboard", 249900, "INR"))
	mock.ExpectQuery(`SELECT \* FROM "project_files"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	r := newCheckoutRouter(t, db, tasks, userID)

	body, _ := json.Marshal(gin.H{
		"project_id":    projectID,
		"buyer_details": gin.H{"email": "asha@example.com"},
	})
	req, _ := http.NewRequest("POST", "/purchases", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response["success"].(bool))
	assert.Equal(t, "VALIDATION_ERROR", response["error"].(map[string]interface{})["code"])
}
