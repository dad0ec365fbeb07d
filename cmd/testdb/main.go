// Command testdb loads the seed users into the configured database and
// prints an access token for each of them.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/hamza-safwan/mini-ride-booking/config"
	"github.com/hamza-safwan/mini-ride-booking/internal/app"
	repo "github.com/hamza-safwan/mini-ride-booking/internal/adapter/postgres"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/pkg/postgres"
	"github.com/hamza-safwan/mini-ride-booking/pkg/trm"
)

var (
	configPath = pflag.String("config-path", "config.yaml", "Path to the config yaml file")
	seedPath   = pflag.String("seed", "", "Users file, defaults to DATABASE_SEED_PATH")
)

func main() {
	pflag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	path := *seedPath
	if path == "" {
		path = cfg.Database.SeedPath
	}
	if path == "" {
		log.Fatal("no seed file: pass --seed or set DATABASE_SEED_PATH")
	}

	users, err := app.LoadUsers(path)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Database.Driver == types.StoragePostgres {
		db, err := postgres.New(ctx, cfg.Database)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()

		if err := repo.Migrate(ctx, db); err != nil {
			log.Fatal(err)
		}

		userRepo := repo.NewUserRepo(db.Pool)
		if err := trm.New(db.Pool).Do(ctx, func(ctx context.Context) error {
			return app.SeedUsers(ctx, userRepo, users)
		}); err != nil {
			log.Fatal(err)
		}
		log.Printf("seeded %d users", len(users))
	} else {
		log.Printf("database driver is %q, the server seeds %s itself on start-up", cfg.Database.Driver, path)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tNAME\tROLE\tTOKEN")
	for i := range users {
		token, err := app.IssueToken(ctx, *cfg, &users[i])
		if err != nil {
			log.Fatal(err)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", users[i].ID, users[i].Name, users[i].Role, token.Token)
	}
}
