// Package app assembles the ledger runtime from configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"

	"kunafa-ledger/internal/audit"
	"kunafa-ledger/internal/config"
	"kunafa-ledger/internal/observability/metrics"
	"kunafa-ledger/internal/sales/application"
	sales "kunafa-ledger/internal/sales/domain"
	fileslot "kunafa-ledger/internal/sales/infrastructure/file"
	"kunafa-ledger/internal/sales/infrastructure/memory"
	slotrepo "kunafa-ledger/internal/sales/infrastructure/postgres"
	salesinterfaces "kunafa-ledger/internal/sales/interfaces"
)

// Runtime holds the wired ledger services.
type Runtime struct {
	Config   config.Config
	DB       *sql.DB
	Slot     sales.Slot
	Ledger   *application.Ledger
	Importer *application.Importer
	Audit    audit.Logger
}

// Open builds the storage backend and the services on top of it.
func Open(ctx context.Context, cfg config.Config, logger *log.Logger) (*Runtime, error) {
	if logger == nil {
		return nil, errors.New("app: nil logger")
	}
	rt := &Runtime{Config: cfg}

	switch cfg.StorageBackend {
	case config.BackendMemory:
		rt.Slot = memory.NewSlot()
	case config.BackendFile:
		slot, err := fileslot.NewSlot(cfg.DataDir, cfg.SlotKey)
		if err != nil {
			return nil, err
		}
		rt.Slot = slot
	case config.BackendPostgres:
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db ping: %w", err)
		}
		repo, err := slotrepo.NewSlotRepository(db, cfg.SlotKey)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("slot schema: %w", err)
		}
		auditRepo := audit.NewRepository(db)
		if err := auditRepo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("audit schema: %w", err)
		}
		rt.DB = db
		rt.Slot = repo
		rt.Audit = auditRepo
	default:
		return nil, fmt.Errorf("app: unknown storage backend %q", cfg.StorageBackend)
	}
	if rt.Audit == nil {
		rt.Audit = audit.NewLogLogger(logger)
	}

	metrics.Init(rt.DB, logger)

	ledger, err := application.NewLedger(rt.Slot, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}
	importer, err := application.NewImporter(ledger, salesinterfaces.XLSXReader{}, cfg.UILocale())
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Ledger = ledger
	rt.Importer = importer
	return rt, nil
}

// Close releases the database pool, if any.
func (rt *Runtime) Close() {
	if rt == nil || rt.DB == nil {
		return
	}
	_ = rt.DB.Close()
}
