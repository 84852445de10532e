package tokens

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
)

func TestPostgresRepository_GetWithClinicName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Now().UTC()
	expires := now.AddDate(1, 0, 0)
	mock.ExpectQuery(`SELECT t.token, t.clinic_id`).
		WithArgs("tok-1").
		WillReturnRows(pgxmock.NewRows([]string{"token", "clinic_id", "created_at", "expires_at", "active", "name"}).
			AddRow("tok-1", "clinic-1", now, expires, true, "Glow Clinic"))

	repo := NewPostgresRepositoryWithDB(mock)
	token, name, err := repo.GetWithClinicName(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("GetWithClinicName failed: %v", err)
	}
	if token.ClinicID != "clinic-1" || name != "Glow Clinic" {
		t.Errorf("got %q/%q, want clinic-1/Glow Clinic", token.ClinicID, name)
	}
	if !token.Active || !token.ExpiresAt.Equal(expires) {
		t.Errorf("token = %+v", token)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_GetWithClinicName_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT t.token, t.clinic_id`).
		WithArgs("tok-missing").
		WillReturnRows(pgxmock.NewRows([]string{"token", "clinic_id", "created_at", "expires_at", "active", "name"}))

	repo := NewPostgresRepositoryWithDB(mock)
	_, _, err = repo.GetWithClinicName(context.Background(), "tok-missing")
	if !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("err = %v, want ErrTokenNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM dashboard_tokens`).
		WithArgs("tok-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := NewPostgresRepositoryWithDB(mock)
	if err := repo.Delete(context.Background(), "tok-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_Delete_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM dashboard_tokens`).
		WithArgs("tok-missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewPostgresRepositoryWithDB(mock)
	if err := repo.Delete(context.Background(), "tok-missing"); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("err = %v, want ErrTokenNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
