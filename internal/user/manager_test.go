package user

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

func setupManagerTest(t *testing.T) (*Manager, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	mgr := NewManager(NewDatastore(db))
	return mgr, mock, func() { db.Close() }
}

func TestUpsertFromDiscord_CreatesNewUser(t *testing.T) {
	mgr, mock, cleanup := setupManagerTest(t)
	defer cleanup()

	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE discord_id = \$1`).
		WithArgs("42").
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "42", "bob", nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	u, err := mgr.UpsertFromDiscord(context.Background(), Profile{DiscordID: "42", DisplayName: "bob"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if u.ID == uuid.Nil {
		t.Error("expected a generated local id")
	}
	if u.DiscordID != "42" {
		t.Errorf("expected discord id 42, got %q", u.DiscordID)
	}
	if u.DisplayName != "bob" {
		t.Errorf("expected display name bob, got %q", u.DisplayName)
	}
	if u.AvatarURL != nil {
		t.Errorf("expected no avatar, got %v", *u.AvatarURL)
	}
}

func TestUpsertFromDiscord_UpdatesExistingUser(t *testing.T) {
	mgr, mock, cleanup := setupManagerTest(t)
	defer cleanup()

	id := uuid.New()
	now := time.Now()
	avatar := "https://cdn.discordapp.com/avatars/42/a1.png"

	rows := sqlmock.NewRows([]string{"id", "discord_id", "display_name", "avatar_url", "bio", "created_at", "updated_at"}).
		AddRow(id, "42", "old name", nil, "an existing bio", now, now)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE discord_id = \$1`).
		WithArgs("42").
		WillReturnRows(rows)

	mock.ExpectExec(`UPDATE users`).
		WithArgs(id, "Bob", avatar).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u, err := mgr.UpsertFromDiscord(context.Background(), Profile{
		DiscordID:   "42",
		DisplayName: "Bob",
		AvatarURL:   &avatar,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if u.ID != id {
		t.Errorf("expected stable local id %s, got %s", id, u.ID)
	}
	if u.DisplayName != "Bob" {
		t.Errorf("expected refreshed display name, got %q", u.DisplayName)
	}
	if u.Bio == nil || *u.Bio != "an existing bio" {
		t.Error("expected bio left untouched")
	}
}

func TestUpsertFromDiscord_RetriesAsUpdateOnConflict(t *testing.T) {
	mgr, mock, cleanup := setupManagerTest(t)
	defer cleanup()

	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE discord_id = \$1`).
		WithArgs("42").
		WillReturnError(sql.ErrNoRows)

	// Concurrent first login inserted the row between lookup and insert.
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_discord_id_key"})

	rows := sqlmock.NewRows([]string{"id", "discord_id", "display_name", "avatar_url", "bio", "created_at", "updated_at"}).
		AddRow(id, "42", "bob", nil, nil, now, now)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE discord_id = \$1`).
		WithArgs("42").
		WillReturnRows(rows)

	mock.ExpectExec(`UPDATE users`).
		WithArgs(id, "bob", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u, err := mgr.UpsertFromDiscord(context.Background(), Profile{DiscordID: "42", DisplayName: "bob"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != id {
		t.Errorf("expected the surviving row's id %s, got %s", id, u.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpsertFromDiscord_ConflictThenLookupFailure(t *testing.T) {
	mgr, mock, cleanup := setupManagerTest(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE discord_id = \$1`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectQuery(`SELECT .+ FROM users WHERE discord_id = \$1`).
		WillReturnError(sql.ErrConnDone)

	_, err := mgr.UpsertFromDiscord(context.Background(), Profile{DiscordID: "42", DisplayName: "bob"})
	if !errors.Is(err, ErrUpsert) {
		t.Errorf("expected ErrUpsert, got %v", err)
	}
}

func TestUpsertFromDiscord_InvalidProfile(t *testing.T) {
	mgr, _, cleanup := setupManagerTest(t)
	defer cleanup()

	_, err := mgr.UpsertFromDiscord(context.Background(), Profile{DiscordID: "", DisplayName: "bob"})
	if !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("expected ErrInvalidProfile, got %v", err)
	}

	_, err = mgr.UpsertFromDiscord(context.Background(), Profile{DiscordID: "42", DisplayName: " "})
	if !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("expected ErrInvalidProfile, got %v", err)
	}
}

func TestCreate_DuplicateDiscordID(t *testing.T) {
	mgr, mock, cleanup := setupManagerTest(t)
	defer cleanup()

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := mgr.Create(context.Background(), &User{DiscordID: "42", DisplayName: "bob"})
	if !errors.Is(err, ErrDuplicateDiscord) {
		t.Errorf("expected ErrDuplicateDiscord, got %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	mgr, mock, cleanup := setupManagerTest(t)
	defer cleanup()

	id := uuid.New()
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := mgr.GetByID(context.Background(), id)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	mgr, mock, cleanup := setupManagerTest(t)
	defer cleanup()

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := mgr.Delete(context.Background(), id)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList_ClampsPagination(t *testing.T) {
	mgr, mock, cleanup := setupManagerTest(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT .+ FROM users ORDER BY created_at DESC`).
		WithArgs(100, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "discord_id", "display_name", "avatar_url", "bio", "created_at", "updated_at"}))

	if _, err := mgr.List(context.Background(), 500, -10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStats(t *testing.T) {
	mgr, mock, cleanup := setupManagerTest(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT COUNT\(\*\), COUNT\(bio\), COUNT\(avatar_url\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count", "count", "count"}).AddRow(10, 4, 7))

	stats, err := mgr.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalUsers != 10 || stats.UsersWithBio != 4 || stats.UsersWithAvatar != 7 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
