package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/geocoder89/usersvc/internal/domain/user"
)

func strPtr(s string) *string {
	return &s
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	u, err := repo.Create(ctx, user.CreateUserRequest{Name: "Ann", Email: "ann@x.com", Password: "p1"})

	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if u.ID == "" {
		t.Fatalf("expected assigned id")
	}

	if u.CreatedAt.IsZero() || u.UpdatedAt.Before(u.CreatedAt) {
		t.Fatalf("bad timestamps: created=%v updated=%v", u.CreatedAt, u.UpdatedAt)
	}

	got, err := repo.GetByID(ctx, u.ID)

	if err != nil {
		t.Fatalf("get by id: %v", err)
	}

	if got != u {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, u)
	}
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	_, err := repo.Create(ctx, user.CreateUserRequest{Name: "Ann", Email: "ann@x.com", Password: "p1"})

	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err = repo.Create(ctx, user.CreateUserRequest{Name: "Bob", Email: "ann@x.com", Password: "p2"})

	if !errors.Is(err, user.ErrEmailExists) {
		t.Fatalf("second create: got %v, want ErrEmailExists", err)
	}

	all, err := repo.FindAll(ctx)

	if err != nil {
		t.Fatalf("find all: %v", err)
	}

	if len(all) != 1 {
		t.Fatalf("expected exactly one row for the email, got %d", len(all))
	}
}

func TestFindAllOrdersNewestFirst(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	emails := []string{"a@x.com", "b@x.com", "c@x.com"}

	for i, email := range emails {
		_, err := repo.Create(ctx, user.CreateUserRequest{Name: "u", Email: email, Password: "p"})

		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	all, err := repo.FindAll(ctx)

	if err != nil {
		t.Fatalf("find all: %v", err)
	}

	if len(all) != len(emails) {
		t.Fatalf("got %d users, want %d", len(all), len(emails))
	}

	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.After(all[i-1].CreatedAt) {
			t.Fatalf("not ordered newest first: %v before %v", all[i-1].CreatedAt, all[i].CreatedAt)
		}
	}
}

func TestUpdateResolvesPartialPatch(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, user.CreateUserRequest{Name: "Ann", Email: "ann@x.com", Password: "p1"})

	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := repo.Update(ctx, created.ID, user.UpdateUserRequest{Name: strPtr("Ann Lee")})

	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Name != "Ann Lee" {
		t.Fatalf("name not updated: %q", updated.Name)
	}

	// unset fields keep the stored values
	if updated.Email != created.Email || updated.Password != created.Password {
		t.Fatalf("unset fields changed: %+v", updated)
	}

	if updated.CreatedAt != created.CreatedAt {
		t.Fatalf("created_at must be immutable")
	}

	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Fatalf("updated_at went backwards")
	}
}

func TestUpdateEmptyPatchStillRefreshesUpdatedAt(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, user.CreateUserRequest{Name: "Ann", Email: "ann@x.com", Password: "p1"})

	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := repo.Update(ctx, created.ID, user.UpdateUserRequest{})

	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Name != created.Name || updated.Email != created.Email || updated.Password != created.Password {
		t.Fatalf("empty patch changed fields: %+v", updated)
	}

	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Fatalf("updated_at went backwards")
	}
}

func TestUpdateRejectsTakenEmail(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	_, err := repo.Create(ctx, user.CreateUserRequest{Name: "Ann", Email: "ann@x.com", Password: "p1"})

	if err != nil {
		t.Fatalf("create ann: %v", err)
	}

	bob, err := repo.Create(ctx, user.CreateUserRequest{Name: "Bob", Email: "bob@x.com", Password: "p2"})

	if err != nil {
		t.Fatalf("create bob: %v", err)
	}

	_, err = repo.Update(ctx, bob.ID, user.UpdateUserRequest{Email: strPtr("ann@x.com")})

	if !errors.Is(err, user.ErrEmailExists) {
		t.Fatalf("got %v, want ErrEmailExists", err)
	}

	// keeping the same email is never a conflict
	_, err = repo.Update(ctx, bob.ID, user.UpdateUserRequest{Email: strPtr("bob@x.com"), Name: strPtr("Bobby")})

	if err != nil {
		t.Fatalf("same-email update: %v", err)
	}
}

func TestUpdateMissingUserFails(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	_, err := repo.Update(ctx, "no-such-id", user.UpdateUserRequest{Name: strPtr("x")})

	if !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	all, err := repo.FindAll(ctx)

	if err != nil {
		t.Fatalf("find all: %v", err)
	}

	if len(all) != 0 {
		t.Fatalf("update must not create rows, got %d", len(all))
	}
}

func TestDeleteRemovesRow(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, user.CreateUserRequest{Name: "Ann", Email: "ann@x.com", Password: "p1"})

	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err = repo.GetByID(ctx, created.ID)

	if !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound after delete", err)
	}

	if err := repo.Delete(ctx, created.ID); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestGetByEmail(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, user.CreateUserRequest{Name: "Ann", Email: "ann@x.com", Password: "p1"})

	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByEmail(ctx, "ann@x.com")

	if err != nil {
		t.Fatalf("get by email: %v", err)
	}

	if got.ID != created.ID {
		t.Fatalf("wrong user: %+v", got)
	}

	// exact match only, no case folding
	_, err = repo.GetByEmail(ctx, "ANN@x.com")

	if !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("case-folded lookup should miss, got %v", err)
	}
}
