package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"

	"github.com/strogmv/blogadmin/internal/adapter/repository/orm"
	"github.com/strogmv/blogadmin/internal/app"
	"github.com/strogmv/blogadmin/internal/domain"
	"github.com/strogmv/blogadmin/internal/pkg/logger"
)

func newSeedCommand() *cobra.Command {
	var (
		categories int
		tags       int
		seed       int64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert fake categories and tags for local development",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if categories < 0 || tags < 0 {
				return fmt.Errorf("--categories and --tags must not be negative")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.DBDriver == "memory" {
				return fmt.Errorf("seeding needs a SQL database, DB_DRIVER is memory")
			}
			db, err := app.OpenDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer orm.Close(db)

			if err := orm.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			cats, tgs := fakeReferenceData(gofakeit.New(seed), categories, tags)
			n, err := orm.SeedReferenceData(cmd.Context(), db, cats, tgs)
			if err != nil {
				return err
			}
			logger.From(cmd.Context()).Info("reference data seeded", slog.Int64("rows", n))
			return nil
		},
	}
	cmd.Flags().IntVar(&categories, "categories", 5, "number of categories to create")
	cmd.Flags().IntVar(&tags, "tags", 10, "number of tags to create")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 picks one from the clock")
	return cmd
}

// fakeReferenceData returns categories and tags with distinct names.
func fakeReferenceData(f *gofakeit.Faker, nCategories, nTags int) ([]domain.Category, []domain.Tag) {
	catNames := uniqueNames(nCategories, f.BuzzWord)
	categories := make([]domain.Category, 0, nCategories)
	for _, name := range catNames {
		categories = append(categories, domain.Category{Name: name, Description: f.Sentence(8)})
	}

	tagNames := uniqueNames(nTags, f.HipsterWord)
	tags := make([]domain.Tag, 0, nTags)
	for _, name := range tagNames {
		tags = append(tags, domain.Tag{Name: name, Description: f.Sentence(5)})
	}
	return categories, tags
}

func uniqueNames(n int, next func() string) []string {
	seen := make(map[string]int, n)
	out := make([]string, 0, n)
	for len(out) < n {
		name := strings.ToLower(next())
		if c := seen[name]; c > 0 {
			seen[name] = c + 1
			name = fmt.Sprintf("%s-%d", name, c+1)
			if seen[name] > 0 {
				continue
			}
		}
		seen[name] = 1
		out = append(out, name)
	}
	return out
}
