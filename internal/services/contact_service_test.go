// internal/services/contact_service_test.go
package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codehaven/codehaven-backend/internal/models"
)

func TestClassifyPriority(t *testing.T) {
	cases := []struct {
		name     string
		budget   string
		deadline string
		want     models.SubmissionPriority
	}{
		{"urgent deadline", "", "URGENT - need this now", models.SubmissionPriorityHigh},
		{"asap deadline", "", "asap please", models.SubmissionPriorityHigh},
		{"one week deadline", "", "within a week", models.SubmissionPriorityHigh},
		{"lakh budget", "2 lakh", "", models.SubmissionPriorityHigh},
		{"100k budget", "around 100k", "", models.SubmissionPriorityHigh},
		{"50k budget", "50k-ish", "", models.SubmissionPriorityHigh},
		{"nothing given", "", "", models.SubmissionPriorityLow},
		{"modest budget", "10k", "", models.SubmissionPriorityMedium},
		{"relaxed deadline", "", "next quarter", models.SubmissionPriorityMedium},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := &CreateContactRequest{Budget: tc.budget, Deadline: tc.deadline}
			assert.Equal(t, tc.want, classifyPriority(req))
		})
	}
}

func TestCreateSubmission(t *testing.T) {
	db, mock := newMockDB(t)
	service := NewContactService(db, nil)

	mock.ExpectQuery(`INSERT INTO "contact_submissions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))

	submission, err := service.CreateSubmission(&CreateContactRequest{
		Name:           "Rahul Nair",
		Email:          "rahul@example.com",
		ProjectType:    "E-commerce",
		ProjectDetails: "Need a full storefront with payments and inventory tracking.",
		Deadline:       "ASAP, launch is close",
	})
	require.NoError(t, err)

	assert.Equal(t, models.SubmissionStatusNew, submission.Status)
	assert.Equal(t, models.SubmissionPriorityHigh, submission.Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSubmissionValidation(t *testing.T) {
	db, _ := newMockDB(t)
	service := NewContactService(db, nil)

	_, err := service.CreateSubmission(&CreateContactRequest{
		Name:  "X",
		Email: "not-an-email",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}
