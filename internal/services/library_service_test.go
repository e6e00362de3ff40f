// internal/services/library_service_test.go
package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleWishlistAdds(t *testing.T) {
	db, mock := newMockDB(t)
	service := NewLibraryService(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "projects"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "wishlists"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "wishlists"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))

	added, err := service.ToggleWishlist(uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.True(t, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleWishlistRemoves(t *testing.T) {
	db, mock := newMockDB(t)
	service := NewLibraryService(db)

	userID := uuid.New()
	projectID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "projects"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "wishlists"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "project_id"}).
			AddRow(uuid.New().String(), userID.String(), projectID.String()))
	mock.ExpectExec(`DELETE FROM "wishlists"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	added, err := service.ToggleWishlist(userID, projectID)
	require.NoError(t, err)
	assert.False(t, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleWishlistUnknownProject(t *testing.T) {
	db, mock := newMockDB(t)
	service := NewLibraryService(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "projects"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := service.ToggleWishlist(uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project not found")
}

func TestRemoveFromCartMissingItem(t *testing.T) {
	db, mock := newMockDB(t)
	service := NewLibraryService(db)

	mock.ExpectExec(`DELETE FROM "cart_items"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := service.RemoveFromCart(uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
