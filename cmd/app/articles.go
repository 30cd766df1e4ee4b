package main

import (
	"context"
	"fmt"
	"log"
	"mockserver/internal/adapters/driven/jsonrepo"
	"mockserver/internal/adapters/driving/httpadapter"
	"mockserver/internal/config"
	"mockserver/internal/core/service/resource"

	"github.com/spf13/cobra"
)

func newArticlesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "articles",
		Short: "Serve GET /articles from a JSON file, optionally filtered by author",
		Long: `articles serves the document in ARTICLES_FILE at GET /articles. With
?author=name only the articles by exactly that author are returned. The file
is read on every request, so edits show up immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			log.Printf("INFO: Serving articles from %s", cfg.ArticlesFile)

			appCtx, cancel := context.WithCancel(context.Background())
			defer cancel()

			setupSignalHandler(cancel)

			svc := resource.NewArticleService(jsonrepo.NewFilePersister(cfg.ArticlesFile))
			handler := httpadapter.NewArticlesHandler(svc)

			return runServer(appCtx, cfg, cfg.ArticlesAddr, handler.SetupRoutes(middlewares(cfg)...))
		},
	}
}
