package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/usersvc/internal/domain/user"
	"github.com/google/uuid"
)

// UsersRepo mirrors the postgres store semantics in process memory. It backs
// tests and local runs without a database; the manual UpdatedAt refresh in
// Update stands in for the table trigger.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) Create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Email == req.Email {
			return user.User{}, user.ErrEmailExists
		}
	}

	now := time.Now().UTC()

	u := user.User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) FindAll(ctx context.Context) ([]user.User, error) {
	r.mu.RLock()

	output := make([]user.User, 0, len(r.items))

	for _, u := range r.items {
		output = append(output, u)
	}

	r.mu.RUnlock()

	// newest first, matching the SQL ORDER BY created_at DESC
	sort.Slice(output, func(i, j int) bool {
		if output[i].CreatedAt.Equal(output[j].CreatedAt) {
			return output[i].ID < output[j].ID
		}

		return output[i].CreatedAt.After(output[j].CreatedAt)
	})

	return output, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	resolved := existing

	if req.Name != nil {
		resolved.Name = *req.Name
	}

	if req.Email != nil {
		resolved.Email = *req.Email
	}

	if req.Password != nil {
		resolved.Password = *req.Password
	}

	if resolved.Email != existing.Email {
		for _, other := range r.items {
			if other.ID != id && other.Email == resolved.Email {
				return user.User{}, user.ErrEmailExists
			}
		}
	}

	resolved.UpdatedAt = time.Now().UTC()

	r.items[id] = resolved

	return resolved, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.items[id]

	if !ok {
		return user.ErrNotFound
	}

	delete(r.items, id)

	return nil
}
