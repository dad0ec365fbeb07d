package app

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
)

type UserUpserter interface {
	Upsert(ctx context.Context, user *models.User) error
}

type seedFile struct {
	Users []models.User `yaml:"users"`
}

// LoadUsers reads the user directory seed file.
//
//	users:
//	  - id: 3f1c...
//	    name: Ayesha
//	    role: passenger
func LoadUsers(path string) ([]models.User, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i, u := range file.Users {
		if u.ID == uuid.Nil {
			return nil, fmt.Errorf("seed user #%d: id is required", i+1)
		}
		if !u.Role.IsValid() {
			return nil, fmt.Errorf("seed user %s: unknown role %q", u.ID, u.Role)
		}
		if u.Role == types.RolePassenger && u.Availability != "" {
			return nil, fmt.Errorf("seed user %s: passengers have no availability", u.ID)
		}
	}
	return file.Users, nil
}

// SeedUsers upserts users into the directory.
func SeedUsers(ctx context.Context, repo UserUpserter, users []models.User) error {
	for i := range users {
		if err := repo.Upsert(ctx, &users[i]); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", users[i].ID, err)
		}
	}
	return nil
}
