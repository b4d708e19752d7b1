package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"orghub/internal/user"
)

func setupUsersTest(t *testing.T) (*UsersHandler, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	ds := user.NewDatastore(db)
	manager := user.NewManager(ds)
	handler := NewUsersHandler(manager)
	return handler, mock, func() { db.Close() }
}

func userRows(ids ...uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "discord_id", "display_name", "avatar_url", "bio", "created_at", "updated_at"})
	for i, id := range ids {
		rows.AddRow(id, uuid.NewString(), "User "+string(rune('A'+i)), nil, nil, now, now)
	}
	return rows
}

func TestUsersHandler_Create(t *testing.T) {
	handler, mock, cleanup := setupUsersTest(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "123456789", "Bob", nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	body, _ := json.Marshal(map[string]any{
		"discord_id":   "123456789",
		"display_name": "Bob",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}

	var response apiResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.Success {
		t.Error("expected success=true")
	}
}

func TestUsersHandler_Create_MissingFields(t *testing.T) {
	handler, _, cleanup := setupUsersTest(t)
	defer cleanup()

	body, _ := json.Marshal(map[string]any{"display_name": "Bob"})
	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestUsersHandler_Get(t *testing.T) {
	handler, mock, cleanup := setupUsersTest(t)
	defer cleanup()

	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "discord_id", "display_name", "avatar_url", "bio", "created_at", "updated_at"}).
			AddRow(id, "42", "Bob", nil, nil, now, now))

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+id.String(), nil)
	req.SetPathValue("id", id.String())
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var response struct {
		Success bool      `json:"success"`
		Data    user.User `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Data.DisplayName != "Bob" {
		t.Errorf("expected display name 'Bob', got %q", response.Data.DisplayName)
	}
}

func TestUsersHandler_Get_NotFound(t *testing.T) {
	handler, mock, cleanup := setupUsersTest(t)
	defer cleanup()

	id := uuid.New()
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(userRows())

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+id.String(), nil)
	req.SetPathValue("id", id.String())
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestUsersHandler_Get_InvalidID(t *testing.T) {
	handler, _, cleanup := setupUsersTest(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/api/users/not-a-uuid", nil)
	req.SetPathValue("id", "not-a-uuid")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestUsersHandler_GetByDiscordID(t *testing.T) {
	handler, mock, cleanup := setupUsersTest(t)
	defer cleanup()

	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE discord_id = \$1`).
		WithArgs("42").
		WillReturnRows(sqlmock.NewRows([]string{"id", "discord_id", "display_name", "avatar_url", "bio", "created_at", "updated_at"}).
			AddRow(id, "42", "Bob", nil, nil, now, now))

	req := httptest.NewRequest(http.MethodGet, "/api/users/discord/42", nil)
	req.SetPathValue("discord_id", "42")
	rec := httptest.NewRecorder()

	handler.GetByDiscordID(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestUsersHandler_List(t *testing.T) {
	handler, mock, cleanup := setupUsersTest(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT .+ FROM users ORDER BY created_at DESC`).
		WithArgs(50, 0).
		WillReturnRows(userRows(uuid.New(), uuid.New()))

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var response struct {
		Success bool        `json:"success"`
		Data    []user.User `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Data) != 2 {
		t.Errorf("expected 2 users, got %d", len(response.Data))
	}
}

func TestUsersHandler_List_Empty(t *testing.T) {
	handler, mock, cleanup := setupUsersTest(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT .+ FROM users ORDER BY created_at DESC`).
		WithArgs(50, 0).
		WillReturnRows(userRows())

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	var response struct {
		Data []user.User `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Data == nil {
		t.Error("expected empty array, got null")
	}
}

func TestUsersHandler_Update(t *testing.T) {
	handler, mock, cleanup := setupUsersTest(t)
	defer cleanup()

	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`UPDATE users`).
		WithArgs(id, "New Name", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "discord_id", "display_name", "avatar_url", "bio", "created_at", "updated_at"}).
			AddRow(id, "42", "New Name", nil, nil, now, now))

	body, _ := json.Marshal(map[string]any{"display_name": "New Name"})
	req := httptest.NewRequest(http.MethodPut, "/api/users/"+id.String(), bytes.NewReader(body))
	req.SetPathValue("id", id.String())
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestUsersHandler_Delete(t *testing.T) {
	handler, mock, cleanup := setupUsersTest(t)
	defer cleanup()

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/api/users/"+id.String(), nil)
	req.SetPathValue("id", id.String())
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", rec.Code)
	}
}

func TestUsersHandler_Delete_NotFound(t *testing.T) {
	handler, mock, cleanup := setupUsersTest(t)
	defer cleanup()

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	req := httptest.NewRequest(http.MethodDelete, "/api/users/"+id.String(), nil)
	req.SetPathValue("id", id.String())
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestUsersHandler_Stats(t *testing.T) {
	handler, mock, cleanup := setupUsersTest(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT .+ FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "with_bio", "with_avatar"}).AddRow(10, 3, 7))

	req := httptest.NewRequest(http.MethodGet, "/api/users/stats", nil)
	rec := httptest.NewRecorder()

	handler.Stats(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var response struct {
		Data user.Stats `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Data.TotalUsers != 10 {
		t.Errorf("expected 10 total users, got %d", response.Data.TotalUsers)
	}
}
