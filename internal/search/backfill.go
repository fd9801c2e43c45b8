package search

import (
	"context"
	"fmt"

	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const backfillBatchSize = 200

// BackfillStats counts documents written by Backfill
type BackfillStats struct {
	Profiles int
	Strains  int
}

// Backfill reindexes every profile and strain from the database. It is used
// after mapping changes or when the cluster was empty while rows were written.
func Backfill(ctx context.Context, db *gorm.DB, idx Index) (*BackfillStats, error) {
	stats := &BackfillStats{}

	var profiles []models.Profile
	err := db.WithContext(ctx).FindInBatches(&profiles, backfillBatchSize, func(tx *gorm.DB, batch int) error {
		for _, p := range profiles {
			if err := idx.IndexProfile(ctx, ProfileToSearchDoc(p)); err != nil {
				return fmt.Errorf("profile %s: %w", p.UserID, err)
			}
			stats.Profiles++
		}
		return nil
	}).Error
	if err != nil {
		return stats, fmt.Errorf("failed to backfill profiles: %w", err)
	}

	var strains []models.Strain
	err = db.WithContext(ctx).FindInBatches(&strains, backfillBatchSize, func(tx *gorm.DB, batch int) error {
		for _, s := range strains {
			if err := idx.IndexStrain(ctx, StrainToSearchDoc(s)); err != nil {
				return fmt.Errorf("strain %s: %w", s.ID, err)
			}
			stats.Strains++
		}
		return nil
	}).Error
	if err != nil {
		return stats, fmt.Errorf("failed to backfill strains: %w", err)
	}

	logger.Log.Info("Search backfill complete",
		zap.Int("profiles", stats.Profiles),
		zap.Int("strains", stats.Strains),
	)
	return stats, nil
}
