package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storepulse/store-analytics/models"
)

func TestCreateStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO stores").
		WithArgs(sqlmock.AnyArg(), "Demo Shop", "demo.example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "public_id", "name", "domain", "created_at"}).
			AddRow(1, "store_generated", "Demo Shop", "demo.example.com", now))

	req := httptest.NewRequest(http.MethodPost, "/api/store",
		strings.NewReader(`{"name":"Demo Shop","domain":"demo.example.com"}`))
	rec := httptest.NewRecorder()
	CreateStore(db)(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var store models.Store
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &store))
	assert.Equal(t, "store_generated", store.PublicID)
	assert.Equal(t, "Demo Shop", store.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStoreMissingFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/store", strings.NewReader(`{"name":"Demo Shop"}`))
	rec := httptest.NewRecorder()
	CreateStore(db)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing required fields: name and domain"}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStoreNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, public_id, name, domain, created_at FROM stores").
		WithArgs("store_missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "public_id", "name", "domain", "created_at"}))

	router := mux.NewRouter()
	router.HandleFunc("/api/store/{storeId}", GetStore(db)).Methods("GET")

	req := httptest.NewRequest(http.MethodGet, "/api/store/store_missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Store store_missing doesn't exist"}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteStoreNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM stores").
		WithArgs("store_missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	router := mux.NewRouter()
	router.HandleFunc("/api/store/{storeId}", DeleteStore(db)).Methods("DELETE")

	req := httptest.NewRequest(http.MethodDelete, "/api/store/store_missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
