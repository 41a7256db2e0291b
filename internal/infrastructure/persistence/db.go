// Package persistence implements the product, customer, order and chat stores on gorm.
package persistence

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/auroramart/personalization/internal/domain"
)

// Open connects to the configured database and migrates the schema
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if err := db.AutoMigrate(allModels()...); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}

const commitOrRollback = "gorm:commit_or_rollback_transaction"

// RegisterCatalogInvalidation drops the cached catalog whenever a product row is created, updated or deleted.
// The first pass runs inside the write's transaction so a failed invalidation rolls the write back.
// The second pass runs after commit so a snapshot rebuilt from pre-commit rows cannot survive.
func RegisterCatalogInvalidation(db *gorm.DB, invalidator domain.CatalogInvalidator, log zerolog.Logger) error {
	inTx := func(tx *gorm.DB) {
		if !touchesProducts(tx) {
			return
		}
		if err := invalidator.Invalidate(ctxOf(tx)); err != nil {
			log.Error().Err(err).Msg("catalog invalidation failed, rolling back product write")
			_ = tx.AddError(fmt.Errorf("invalidate catalog: %w", err))
		}
	}
	afterCommit := func(tx *gorm.DB) {
		if !touchesProducts(tx) {
			return
		}
		if err := invalidator.Invalidate(ctxOf(tx)); err != nil {
			log.Warn().Err(err).Msg("post-commit catalog invalidation failed")
		}
	}

	if err := db.Callback().Create().After("gorm:create").Before(commitOrRollback).Register("aurora:catalog_invalidate_create", inTx); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Before(commitOrRollback).Register("aurora:catalog_invalidate_update", inTx); err != nil {
		return err
	}
	if err := db.Callback().Delete().After("gorm:delete").Before(commitOrRollback).Register("aurora:catalog_invalidate_delete", inTx); err != nil {
		return err
	}
	if err := db.Callback().Create().After(commitOrRollback).Register("aurora:catalog_invalidate_create_commit", afterCommit); err != nil {
		return err
	}
	if err := db.Callback().Update().After(commitOrRollback).Register("aurora:catalog_invalidate_update_commit", afterCommit); err != nil {
		return err
	}
	return db.Callback().Delete().After(commitOrRollback).Register("aurora:catalog_invalidate_delete_commit", afterCommit)
}

func touchesProducts(tx *gorm.DB) bool {
	return tx.Error == nil && tx.Statement != nil && tx.Statement.Schema != nil &&
		tx.Statement.Schema.Table == productsTable
}

func ctxOf(tx *gorm.DB) context.Context {
	if tx.Statement != nil && tx.Statement.Context != nil {
		return tx.Statement.Context
	}
	return context.Background()
}
