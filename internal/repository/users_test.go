package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/medsched/medsched/pkg/domain"
)

func TestUsersCreateRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := NewUsersRepository()

	if _, err := users.Create(ctx, &domain.User{Email: "ana@hospital.com", Role: domain.RoleDoctor, Active: true}, "h1"); err != nil {
		t.Fatal(err)
	}
	_, err := users.Create(ctx, &domain.User{Email: "ANA@hospital.com", Role: domain.RolePatient, Active: true}, "h2")
	if !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Errorf("duplicate email: %v, want ErrUserAlreadyExists", err)
	}
}

func TestUsersGetByEmailCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	users := NewUsersRepository()
	created, err := users.Create(ctx, &domain.User{Email: "ana@hospital.com", Role: domain.RoleDoctor, Active: true}, "h")
	if err != nil {
		t.Fatal(err)
	}

	got, err := users.GetByEmail(ctx, "Ana@Hospital.com")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail returned user %d, want %d", got.ID, created.ID)
	}

	if _, err := users.GetByEmail(ctx, "nobody@hospital.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("unknown email: %v, want ErrUserNotFound", err)
	}
}

func TestUsersAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	users := NewUsersRepository()

	u1, err := users.Create(ctx, &domain.User{Email: "a@x.com", Role: domain.RolePatient, Active: true}, "h")
	if err != nil {
		t.Fatal(err)
	}
	// An explicit ID bumps the sequence past it.
	if _, err := users.Create(ctx, &domain.User{ID: 100, Email: "b@x.com", Role: domain.RolePatient, Active: true}, "h"); err != nil {
		t.Fatal(err)
	}
	u3, err := users.Create(ctx, &domain.User{Email: "c@x.com", Role: domain.RolePatient, Active: true}, "h")
	if err != nil {
		t.Fatal(err)
	}
	if u1.ID != 1 {
		t.Errorf("first ID = %d, want 1", u1.ID)
	}
	if u3.ID != 101 {
		t.Errorf("ID after explicit 100 = %d, want 101", u3.ID)
	}
}

func TestUsersListByRoleSorted(t *testing.T) {
	ctx := context.Background()
	users := NewUsersRepository()
	fixtures := []domain.User{
		{ID: 3, Email: "c@x.com", Role: domain.RolePatient, Active: true},
		{ID: 1, Email: "a@x.com", Role: domain.RoleDoctor, Active: true},
		{ID: 2, Email: "b@x.com", Role: domain.RolePatient, Active: true},
	}
	for i := range fixtures {
		if _, err := users.Create(ctx, &fixtures[i], "h"); err != nil {
			t.Fatal(err)
		}
	}

	patients, err := users.ListByRole(ctx, domain.RolePatient)
	if err != nil {
		t.Fatal(err)
	}
	if len(patients) != 2 || patients[0].ID != 2 || patients[1].ID != 3 {
		t.Errorf("patients = %+v", patients)
	}

	all, err := users.ListByRole(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("empty role should list everyone, got %d", len(all))
	}
}

func TestUsersSetActive(t *testing.T) {
	ctx := context.Background()
	users := NewUsersRepository()
	created, err := users.Create(ctx, &domain.User{Email: "a@x.com", Role: domain.RoleDoctor, Active: true}, "h")
	if err != nil {
		t.Fatal(err)
	}

	updated, err := users.SetActive(ctx, created.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Active {
		t.Error("user should be inactive")
	}

	got, err := users.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Active {
		t.Error("deactivation not persisted")
	}

	if _, err := users.SetActive(ctx, 999, true); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("unknown user: %v, want ErrUserNotFound", err)
	}
}
