// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

// Command institutionctl is the operator CLI for the institutions catalog.
//
// Usage:
//
//	institutionctl list               Valid institutions as a table
//	institutionctl show <id>          One institution, soft-deleted ones included
//	institutionctl lookup <unitid>    Reference data for an IPEDS unit id
//	institutionctl migrate            Apply pending schema migrations
//
// Configuration is read from the same environment variables as the API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/osg-htc/institutions/internal/institution"
	"github.com/osg-htc/institutions/internal/platform/config"
	"github.com/osg-htc/institutions/internal/platform/migration"
	"github.com/osg-htc/institutions/internal/platform/objectstore"
	pgstore "github.com/osg-htc/institutions/internal/platform/postgres"
	"github.com/osg-htc/institutions/internal/reference"
)

const commandTimeout = 2 * time.Minute

var errUsage = errors.New("usage: institutionctl [-v] <list|show <id>|lookup <unitid>|migrate>")

func main() {
	verbose := flag.Bool("v", false, "log progress to stderr")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := run(ctx, flag.Args(), os.Stdout, logger); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, logger *slog.Logger) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch command := args[0]; {
	case command == "list" && len(args) == 1:
		repository, closeFn, err := openRepository(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeFn()

		institutions, err := repository.ListValid(ctx)
		if err != nil {
			return err
		}
		renderList(out, institutions)
		return nil

	case command == "show" && len(args) == 2:
		repository, closeFn, err := openRepository(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeFn()

		publicID, ok := institution.FullPublicID(args[1])
		if !ok {
			return institution.ErrNotFound
		}
		inst, err := repository.GetByPublicID(ctx, publicID)
		if err != nil {
			return err
		}
		renderInstitution(out, inst)
		return nil

	case command == "lookup" && len(args) == 2:
		catalog, err := openCatalog(ctx, cfg, logger)
		if err != nil {
			return err
		}
		return renderLookup(ctx, out, catalog, args[1])

	case command == "migrate" && len(args) == 1:
		if !cfg.UsesPostgres() {
			return errors.New("migrate requires STORE_DRIVER=postgres")
		}
		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintln(out, "migrations applied")
		return nil

	default:
		return errUsage
	}
}

func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (institution.Repository, func(), error) {
	if !cfg.UsesPostgres() {
		return nil, nil, errors.New("the memory store holds no data outside the API process; set STORE_DRIVER=postgres")
	}

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, err
	}
	return institution.NewPostgresRepository(pool), pool.Close, nil
}

func openCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*reference.Catalog, error) {
	locations := reference.Locations{
		IPEDS:        cfg.IPEDSDataLocation,
		Carnegie2021: cfg.Carnegie2021DataLocation,
		Carnegie2025: cfg.Carnegie2025DataLocation,
	}

	var objects reference.Opener
	if objectstore.IsLocation(locations.IPEDS) || objectstore.IsLocation(locations.Carnegie2021) || objectstore.IsLocation(locations.Carnegie2025) {
		store, err := objectstore.New(ctx, objectstore.Config{Region: cfg.S3Region, Endpoint: cfg.S3Endpoint, PathStyle: cfg.S3PathStyle})
		if err != nil {
			return nil, fmt.Errorf("configure object storage: %w", err)
		}
		objects = store
	}

	return reference.NewCatalog(reference.NewSource(objects), locations, logger), nil
}
