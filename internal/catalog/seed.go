package catalog

import (
	"context"
	"time"

	"github.com/khadamati/khadamati/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DemoCategories, DemoProviders and DemoServices form the sample catalog
// loaded by `khadamati seed` and by servers started with lifecycle.seed_demo.
var (
	DemoCategories = []domain.Category{
		{ID: 1, Name: "Plumbing"},
		{ID: 2, Name: "Electrical"},
		{ID: 3, Name: "Cleaning"},
	}
	DemoProviders = []domain.Provider{
		{ID: 3, UserID: 3, Name: "Sami Haddad", Specialization: "Plumbing"},
		{ID: 4, UserID: 4, Name: "Rami Khoury", Specialization: "Electrical"},
		{ID: 5, UserID: 5, Name: "Nour Saleh", Specialization: "Cleaning"},
	}
	DemoServices = []domain.Service{
		{ID: 12, ProviderID: 3, CategoryID: 1, Title: "Sink and drain repair", Description: "Leaks, clogs and fixture replacement.", Price: 50000},
		{ID: 13, ProviderID: 4, CategoryID: 2, Title: "Home rewiring", Description: "Panel upgrades and socket installation.", Price: 120000},
		{ID: 14, ProviderID: 5, CategoryID: 3, Title: "Apartment deep clean", Description: "Full apartment cleaning, supplies included.", Price: 35000},
		{ID: 15, ProviderID: 3, CategoryID: 1, Title: "Water heater install", Description: "Electric and gas heaters.", Price: 80000},
	}
)

// SeedDemo inserts the demo catalog. Existing rows are left untouched, so
// running it twice is harmless.
func SeedDemo(ctx context.Context, db *gorm.DB) error {
	now := time.Now()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ignore := tx.Clauses(clause.OnConflict{DoNothing: true})
		for _, c := range DemoCategories {
			c.CreatedAt = now
			if err := ignore.Create(&c).Error; err != nil {
				return errors.Wrapf(err, "seed category %d", c.ID)
			}
		}
		for _, p := range DemoProviders {
			p.CreatedAt, p.UpdatedAt = now, now
			if err := ignore.Create(&p).Error; err != nil {
				return errors.Wrapf(err, "seed provider %d", p.ID)
			}
		}
		for _, s := range DemoServices {
			s.CreatedAt, s.UpdatedAt = now, now
			if err := ignore.Create(&s).Error; err != nil {
				return errors.Wrapf(err, "seed service %d", s.ID)
			}
		}
		zap.L().Info("demo catalog seeded",
			zap.Int("categories", len(DemoCategories)),
			zap.Int("providers", len(DemoProviders)),
			zap.Int("services", len(DemoServices)),
		)
		return nil
	})
}
