// Package repositories is the data-access layer attached to the service
// context by the persistence stage.
package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/sampleapp/app/models"
	"github.com/shashiranjanraj/sampleapp/pkg/app"
	"github.com/shashiranjanraj/sampleapp/pkg/cache"
)

// Set groups the repositories over one connection and cache.
type Set struct {
	Users    *UserRepository
	Products *ProductRepository

	db    *gorm.DB
	store cache.Store
}

// Build migrates the schema and returns the repositories over db.
func Build(ctx context.Context, db *gorm.DB, store cache.Store) (*Set, error) {
	if store == nil {
		store = cache.Nop{}
	}
	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return &Set{
		Users:    NewUserRepository(db),
		Products: NewProductRepository(db, store),
		db:       db,
		store:    store,
	}, nil
}

// Builder opens the cache described by opts and builds the Set.
func Builder(opts cache.Options) app.ModelBuilder {
	return func(ctx context.Context, db *gorm.DB) (app.DataAccess, error) {
		store, err := cache.Open(ctx, opts)
		if err != nil {
			return nil, err
		}
		set, err := Build(ctx, db, store)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		return set, nil
	}
}

// Ping checks the database connection.
func (s *Set) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the cache and the database pool.
func (s *Set) Close() error {
	var errs []error
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
