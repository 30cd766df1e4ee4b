package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"mockserver/internal/adapters/driven/jsonrepo"
	"mockserver/internal/adapters/driven/sqlitepersist"
	"mockserver/internal/adapters/driving/httpadapter"
	"mockserver/internal/assets"
	"mockserver/internal/config"
	"mockserver/internal/core/domain"
	"mockserver/internal/core/service/resource"
	"os"

	"github.com/go-json-experiment/json"
	"github.com/spf13/cobra"
)

func serve(cmd *cobra.Command) error {
	fmt.Println(assets.BannerString)
	log.Printf("INFO: Starting mock server...")

	// detect the operating mode at runtime
	cfg, pipedData, err := bootstrap(cmd)
	if err != nil {
		return err
	}

	// create the context
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupSignalHandler(cancel)

	repo, watcher, cleanup, err := newRepository(appCtx, cfg, pipedData)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := watcher.Watch(appCtx); err != nil {
		log.Printf("WARN: Hot reload disabled: %v", err)
	}

	apiHandler := httpadapter.NewHandler(resource.NewService(repo))

	return runServer(appCtx, cfg, cfg.ServerAddr, apiHandler.SetupRoutes(middlewares(cfg)...))
}

// bootstrap determines the operating mode and returns the appropriate config and any piped data.
func bootstrap(cmd *cobra.Command) (*config.Config, *domain.Dataset, error) {
	// load the config
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		log.Println("INFO: Data detected on stdin. Running in pipe mode.")

		cfg.OpMode = config.ModePipe
		cfg.StoreBackend = config.BackendMemory

		pipedData := domain.NewDataset()
		if err := json.UnmarshalRead(os.Stdin, pipedData); err != nil {
			return nil, nil, fmt.Errorf("failed to parse JSON from stdin: %w", err)
		}

		return cfg, pipedData, nil
	}

	log.Println("INFO: No data on stdin. Running in default server mode.")
	log.Printf("INFO: Configuration loaded: Server Address=%s, Data File=%s, Backend=%s", cfg.ServerAddr, cfg.DataFile, cfg.StoreBackend)

	cfg.OpMode = config.ModeServer

	return cfg, nil, nil
}

// newRepository builds the repository for the configured backend. The returned
// watcher is a no-op unless the JSON data file is watched.
func newRepository(ctx context.Context, cfg *config.Config, pipedData *domain.Dataset) (*jsonrepo.JsonRepository, jsonrepo.Watcher, func(), error) {
	noCleanup := func() {}

	if cfg.OpMode == config.ModePipe {
		// create an in-memory repo (only)
		log.Println("INFO: Initialising repository from stdin data.")
		return jsonrepo.NewJsonRepositoryFromData(pipedData), jsonrepo.NewNoOpWatcher(), noCleanup, nil
	}

	switch cfg.StoreBackend {
	case config.BackendJSON:
		log.Println("INFO: Initialising file-based repository.")
		repo := jsonrepo.NewJsonRepository(ctx, jsonrepo.NewFilePersister(cfg.DataFile))

		if !cfg.WatchData {
			return repo, jsonrepo.NewNoOpWatcher(), noCleanup, nil
		}

		watcher, err := jsonrepo.NewFsnotifyWatcher(cfg.DataFile, repo.Reload)
		if err != nil {
			log.Printf("WARN: Hot reload disabled: %v", err)
			return repo, jsonrepo.NewNoOpWatcher(), noCleanup, nil
		}
		return repo, watcher, noCleanup, nil

	case config.BackendSQLite:
		log.Printf("INFO: Initialising sqlite repository at %s.", cfg.SQLiteFile)
		persister, err := sqlitepersist.New(ctx, cfg.SQLiteFile)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create repository: %w", err)
		}

		if err := seedFromDataFile(ctx, persister, cfg.DataFile); err != nil {
			log.Printf("WARN: Could not import %s into %s: %v", cfg.DataFile, cfg.SQLiteFile, err)
		}

		repo := jsonrepo.NewJsonRepository(ctx, persister)
		cleanup := func() {
			if err := persister.Close(); err != nil {
				log.Printf("ERROR: Failed to close %s: %v", cfg.SQLiteFile, err)
			}
		}
		return repo, jsonrepo.NewNoOpWatcher(), cleanup, nil

	case config.BackendMemory:
		log.Println("INFO: Initialising in-memory repository; changes will not be saved.")
		ds, err := jsonrepo.NewFilePersister(cfg.DataFile).Load(ctx)
		if err != nil {
			log.Printf("WARN: Starting with an empty dataset: %v", err)
			ds = nil
		}
		return jsonrepo.NewJsonRepositoryFromData(ds), jsonrepo.NewNoOpWatcher(), noCleanup, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %s", cfg.StoreBackend)
	}
}

// seedFromDataFile copies the JSON data file into an empty database so the
// sqlite backend starts from the same document as the json one.
func seedFromDataFile(ctx context.Context, persister *sqlitepersist.Persister, dataFile string) error {
	current, err := persister.Load(ctx)
	if err != nil {
		return err
	}
	if len(current.Names()) > 0 {
		return nil
	}

	ds, err := jsonrepo.NewFilePersister(dataFile).Load(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	log.Printf("INFO: Importing %d resources from %s", len(ds.Names()), dataFile)
	return persister.Persist(ctx, ds)
}
