package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/hamza-safwan/mini-ride-booking/pkg/postgres"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema.
func Migrate(ctx context.Context, db *postgres.PostgreDB) error {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	return db.Migrate(ctx, sub)
}
