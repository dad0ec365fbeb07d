package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hamza-safwan/mini-ride-booking/internal/adapter/memory"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func TestLoadAndSeedUsers(t *testing.T) {
	path := writeSeed(t, `
users:
  - id: 5b0a3c1e-8a4e-4a43-9d59-2a7f1f0c1a01
    name: Ayesha
    role: passenger
  - id: 5b0a3c1e-8a4e-4a43-9d59-2a7f1f0c1a02
    name: Bilal
    role: driver
    availability: available
    vehicle: Suzuki Alto
`)

	users, err := LoadUsers(path)
	if err != nil {
		t.Fatalf("LoadUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	repo := memory.NewUserRepo()
	if err := SeedUsers(context.Background(), repo, users); err != nil {
		t.Fatalf("SeedUsers: %v", err)
	}

	driver, err := repo.GetUser(context.Background(), users[1].ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if driver.Role != types.RoleDriver || driver.Availability != types.Available || driver.Vehicle != "Suzuki Alto" {
		t.Fatalf("unexpected driver: %+v", driver)
	}
}

func TestLoadUsers_Invalid(t *testing.T) {
	tests := map[string]string{
		"missing id":             "users:\n  - name: x\n    role: passenger\n",
		"unknown role":           "users:\n  - id: 5b0a3c1e-8a4e-4a43-9d59-2a7f1f0c1a01\n    role: admin\n",
		"passenger availability": "users:\n  - id: 5b0a3c1e-8a4e-4a43-9d59-2a7f1f0c1a01\n    role: passenger\n    availability: available\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadUsers(writeSeed(t, content)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}
