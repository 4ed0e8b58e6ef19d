package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shield-quiz-service/internal/app"
	"shield-quiz-service/internal/config"
	"shield-quiz-service/internal/infra/jsonfile"
	"shield-quiz-service/internal/infra/postgres"
	"shield-quiz-service/internal/logger"
)

// NewLoadCatalogCmd imports a quiz_data.json file into Postgres.
func NewLoadCatalogCmd(configPath *string) *cobra.Command {
	var (
		file     string
		purge    bool
		seedNews bool
	)
	cmd := &cobra.Command{
		Use:   "load-catalog",
		Short: "Import quiz levels and questions from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			if file == "" {
				file = cfg.Catalog.File
			}
			quizzes, err := jsonfile.ReadFile(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := runMigrations(ctx, cfg, log); err != nil {
				return err
			}
			db := postgres.Open(cfg.Postgres.URL)
			defer db.Close()

			result, err := postgres.NewCatalogImporter(db).Import(ctx, quizzes, purge)
			if err != nil {
				return fmt.Errorf("import %s: %w", file, err)
			}
			log.Info("catalog imported",
				zap.String("file", file),
				zap.Bool("purged", purge),
				zap.Int("quizzes", result.Quizzes),
				zap.Int("questions", result.Questions))

			if seedNews {
				articles := app.PlaceholderArticles()
				if err := postgres.NewAuditStore(db).SaveArticles(ctx, articles); err != nil {
					return err
				}
				log.Info("news seeded", zap.Int("articles", len(articles)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "quiz data file (defaults to catalog.file from config)")
	cmd.Flags().BoolVar(&purge, "purge", false, "delete all attempts, audit records, articles and quizzes before importing")
	cmd.Flags().BoolVar(&seedNews, "seed-news", false, "also store the placeholder news articles")
	return cmd
}
