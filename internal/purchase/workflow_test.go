// internal/purchase/workflow_test.go
package purchase

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codehaven/codehaven-backend/internal/models"
)

var licenseKeyPattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

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

type stubCharger struct {
	txnID  string
	err    error
	called bool
}

func (c *stubCharger) Charge(ctx context.Context, amountMinor int64, currency, description string) (string, error) {
	c.called = true
	if c.err != nil {
		return "", c.err
	}
	return c.txnID, nil
}

func testProject() *models.Project {
	return &models.Project{
		BaseModel: models.BaseModel{ID: uuid.New()},
		Title:     "React Admin Dashboard",
		Price:     249900,
		Currency:  "INR",
	}
}

func validDetails() BuyerDetails {
	return BuyerDetails{
		FullName: "Asha Verma",
		Email:    "asha@example.com",
		Phone:    "+91 98765 43210",
		Address:  "42 MG Road, Indiranagar",
	}
}

func TestSubmitDetailsAdvancesState(t *testing.T) {
	w := NewWorkflow(nil, nil, nil, testProject(), 5)
	require.Equal(t, StateCollectingDetails, w.State())

	details := validDetails()
	details.City = "Bengaluru"
	require.NoError(t, w.SubmitDetails(details))

	assert.Equal(t, StateConfirmingPayment, w.State())
	require.NotNil(t, w.Details())
	assert.Equal(t, "Asha Verma", w.Details().FullName)
	assert.Equal(t, "Bengaluru", w.Details().City)
}

func TestSubmitDetailsRejectsMissingRequiredFields(t *testing.T) {
	w := NewWorkflow(nil, nil, nil, testProject(), 5)

	err := w.SubmitDetails(BuyerDetails{Email: "not-an-email"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "fullname")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "phone")
	assert.Contains(t, verr.Fields, "address")

	assert.Equal(t, StateCollectingDetails, w.State())
	assert.Nil(t, w.Details())
}

func TestSubmitDetailsOptionalFieldsMayBeEmpty(t *testing.T) {
	w := NewWorkflow(nil, nil, nil, testProject(), 5)

	require.NoError(t, w.SubmitDetails(validDetails()))
	assert.Equal(t, StateConfirmingPayment, w.State())
}

func TestSubmitDetailsRequiresPresenceOnly(t *testing.T) {
	w := NewWorkflow(nil, nil, nil, testProject(), 5)

	require.NoError(t, w.SubmitDetails(BuyerDetails{
		FullName: "X",
		Email:    "a@b.com",
		Phone:    "1",
		Address:  "x",
	}))
	assert.Equal(t, StateConfirmingPayment, w.State())
}

func TestSubmitDetailsNotAllowedAfterAdvancing(t *testing.T) {
	w := NewWorkflow(nil, nil, nil, testProject(), 5)
	require.NoError(t, w.SubmitDetails(validDetails()))

	err := w.SubmitDetails(validDetails())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBackRetainsDetails(t *testing.T) {
	w := NewWorkflow(nil, nil, nil, testProject(), 5)
	require.NoError(t, w.SubmitDetails(validDetails()))

	require.NoError(t, w.Back())
	assert.Equal(t, StateCollectingDetails, w.State())
	require.NotNil(t, w.Details())
	assert.Equal(t, "asha@example.com", w.Details().Email)

	assert.ErrorIs(t, w.Back(), ErrInvalidTransition)
}

func TestResetClearsProgress(t *testing.T) {
	w := NewWorkflow(nil, nil, nil, testProject(), 5)
	require.NoError(t, w.SubmitDetails(validDetails()))

	w.Reset()

	assert.Equal(t, StateCollectingDetails, w.State())
	assert.Nil(t, w.Details())
}

func TestConfirmPurchaseRequiresPaymentState(t *testing.T) {
	w := NewWorkflow(nil, nil, &stubCharger{}, testProject(), 5)

	_, err := w.ConfirmPurchase(context.Background(), &Identity{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConfirmPurchaseRequiresIdentity(t *testing.T) {
	charger := &stubCharger{txnID: "txn_1"}
	w := NewWorkflow(nil, nil, charger, testProject(), 5)
	require.NoError(t, w.SubmitDetails(validDetails()))

	_, err := w.ConfirmPurchase(context.Background(), nil)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	_, err = w.ConfirmPurchase(context.Background(), &Identity{UserID: uuid.Nil})
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	assert.False(t, charger.called)
	assert.Equal(t, StateConfirmingPayment, w.State())
}

func TestConfirmPurchaseCompletes(t *testing.T) {
	db, mock := newMockDB(t)
	tasks := NewTaskQueue(8)

	mock.ExpectQuery(`INSERT INTO "purchases"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectExec(`UPDATE "projects" SET "downloads"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	charger := &stubCharger{txnID: "txn_test_1"}
	w := NewWorkflow(db, tasks, charger, testProject(), 5)
	require.NoError(t, w.SubmitDetails(validDetails()))

	record, err := w.ConfirmPurchase(context.Background(), &Identity{UserID: uuid.New(), Email: "asha@example.com"})
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, w.State())
	assert.True(t, charger.called)
	assert.Equal(t, models.PaymentStatusCompleted, record.PaymentStatus)
	assert.Equal(t, "txn_test_1", record.TransactionID)
	assert.Equal(t, int64(249900), record.Amount)
	assert.Equal(t, 5, record.MaxDownloads)
	assert.Regexp(t, licenseKeyPattern, record.LicenseKey)
	assert.Equal(t, "Asha Verma", record.BuyerDetails["full_name"])

	tasks.Close()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmPurchaseMinimalDetails(t *testing.T) {
	db, mock := newMockDB(t)
	tasks := NewTaskQueue(8)

	mock.ExpectQuery(`INSERT INTO "purchases"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectExec(`UPDATE "projects" SET "downloads"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	project := testProject()
	project.Price = 24999

	w := NewWorkflow(db, tasks, &stubCharger{txnID: "txn_min"}, project, 5)
	require.NoError(t, w.SubmitDetails(BuyerDetails{
		FullName: "A B",
		Email:    "a@b.com",
		Phone:    "123",
		Address:  "X",
	}))

	record, err := w.ConfirmPurchase(context.Background(), &Identity{UserID: uuid.New()})
	require.NoError(t, err)

	assert.Len(t, record.LicenseKey, 19)
	assert.Equal(t, int64(24999), record.Amount)
	assert.Equal(t, 0, record.DownloadCount)

	tasks.Close()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmPurchaseRepeatIssuesNewRecord(t *testing.T) {
	db, mock := newMockDB(t)
	tasks := NewTaskQueue(8)

	for i := 0; i < 2; i++ {
		mock.ExpectQuery(`INSERT INTO "purchases"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
		mock.ExpectExec(`UPDATE "projects" SET "downloads"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "users" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	project := testProject()
	identity := &Identity{UserID: uuid.New()}

	first := NewWorkflow(db, tasks, &stubCharger{txnID: "txn_a"}, project, 5)
	require.NoError(t, first.SubmitDetails(validDetails()))
	one, err := first.ConfirmPurchase(context.Background(), identity)
	require.NoError(t, err)

	second := NewWorkflow(db, tasks, &stubCharger{txnID: "txn_b"}, project, 5)
	require.NoError(t, second.SubmitDetails(validDetails()))
	two, err := second.ConfirmPurchase(context.Background(), identity)
	require.NoError(t, err)

	assert.NotEqual(t, one.LicenseKey, two.LicenseKey)

	tasks.Close()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmPurchasePaymentFailure(t *testing.T) {
	db, _ := newMockDB(t)

	charger := &stubCharger{err: errors.New("card declined")}
	w := NewWorkflow(db, nil, charger, testProject(), 5)
	require.NoError(t, w.SubmitDetails(validDetails()))

	_, err := w.ConfirmPurchase(context.Background(), &Identity{UserID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment failed")
	assert.Equal(t, StateConfirmingPayment, w.State())
}

func TestConfirmPurchaseRetriesLicenseKeyCollision(t *testing.T) {
	db, mock := newMockDB(t)
	tasks := NewTaskQueue(8)

	mock.ExpectQuery(`INSERT INTO "purchases"`).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "idx_purchases_license_key"`))
	mock.ExpectQuery(`INSERT INTO "purchases"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectExec(`UPDATE "projects" SET "downloads"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := NewWorkflow(db, tasks, &stubCharger{txnID: "txn_test_3"}, testProject(), 5)
	require.NoError(t, w.SubmitDetails(validDetails()))

	record, err := w.ConfirmPurchase(context.Background(), &Identity{UserID: uuid.New()})
	require.NoError(t, err)
	assert.Regexp(t, licenseKeyPattern, record.LicenseKey)

	tasks.Close()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmPurchaseRecordFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO "purchases"`).
		WillReturnError(errors.New("connection reset"))

	w := NewWorkflow(db, nil, &stubCharger{txnID: "txn_test_4"}, testProject(), 5)
	require.NoError(t, w.SubmitDetails(validDetails()))

	_, err := w.ConfirmPurchase(context.Background(), &Identity{UserID: uuid.New()})

	var perr *PurchaseRecordError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StateConfirmingPayment, w.State())
}

func TestNewWorkflowDefaultsMaxDownloads(t *testing.T) {
	w := NewWorkflow(nil, nil, nil, testProject(), 0)
	assert.Equal(t, 5, w.maxDownloads)
}

func TestRecordDownload(t *testing.T) {
	db, mock := newMockDB(t)
	purchaseID := uuid.New()
	userID := uuid.New()

	projectID := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "purchases"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "project_id", "payment_status", "download_count", "max_downloads"}).
			AddRow(purchaseID.String(), userID.String(), projectID.String(), "completed", 2, 5))
	mock.ExpectExec(`UPDATE "purchases" SET "download_count"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// The post-update read reflects increments from concurrent requests.
	mock.ExpectQuery(`SELECT \* FROM "purchases"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "project_id", "payment_status", "download_count", "max_downloads"}).
			AddRow(purchaseID.String(), userID.String(), projectID.String(), "completed", 4, 5))

	record, err := RecordDownload(db, purchaseID, userID)
	require.NoError(t, err)
	assert.Equal(t, 4, record.DownloadCount)
	assert.Equal(t, 1, record.DownloadsRemaining())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDownloadLimitReached(t *testing.T) {
	db, mock := newMockDB(t)
	purchaseID := uuid.New()
	userID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "user_id", "project_id", "payment_status", "download_count", "max_downloads"}).
		AddRow(purchaseID.String(), userID.String(), uuid.New().String(), "completed", 5, 5)
	mock.ExpectQuery(`SELECT \* FROM "purchases"`).WillReturnRows(rows)
	mock.ExpectExec(`UPDATE "purchases" SET "download_count"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := RecordDownload(db, purchaseID, userID)
	assert.ErrorIs(t, err, ErrDownloadLimitReached)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDownloadNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "purchases"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := RecordDownload(db, uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "purchase not found")
}
