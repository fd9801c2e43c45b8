package seed

import (
	"context"
	"testing"

	"github.com/puffbuddy/backend/internal/database"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/puffbuddy/backend/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, *Seeder) {
	t.Helper()
	db, err := database.OpenTest()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db, NewSeeder(db)
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestSeedStrainsIsIdempotent(t *testing.T) {
	db, s := setup(t)

	strains, err := s.SeedStrains()
	require.NoError(t, err)
	assert.Len(t, strains, len(catalog))

	strains, err = s.SeedStrains()
	require.NoError(t, err)
	assert.Len(t, strains, len(catalog))
	assert.EqualValues(t, len(catalog), count(t, db, &models.Strain{}))
}

func TestSeedStrainsKeepsExistingNamesInAnyCase(t *testing.T) {
	db, s := setup(t)
	require.NoError(t, db.Create(&models.Strain{Name: "blue dream", Type: models.StrainHybrid, CreatedBy: "someone"}).Error)

	_, err := s.SeedStrains()
	require.NoError(t, err)
	assert.EqualValues(t, len(catalog), count(t, db, &models.Strain{}))
}

func TestCatalogNamesAreUniqueAndTyped(t *testing.T) {
	seen := map[string]bool{}
	for _, entry := range catalog {
		assert.False(t, seen[entry.Name], entry.Name)
		seen[entry.Name] = true
		assert.Contains(t, []string{models.StrainIndica, models.StrainSativa, models.StrainHybrid}, entry.Type)
		assert.True(t, entry.THC >= 0 && entry.THC <= 100, entry.Name)
	}
}

func TestSeedDevWith(t *testing.T) {
	db, s := setup(t)

	counts := DevCounts{Users: 4, Posts: 6, Comments: 5, MaxPuffsEach: 3, Days: 7}
	require.NoError(t, s.SeedDevWith(counts))

	assert.EqualValues(t, 4, count(t, db, &models.User{}))
	assert.EqualValues(t, 4, count(t, db, &models.Profile{}))
	assert.EqualValues(t, 6, count(t, db, &models.Post{}))
	assert.EqualValues(t, 5, count(t, db, &models.Comment{}))

	// Post counters match the interaction rows
	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	for _, p := range posts {
		var likes, comments int64
		db.Model(&models.PostLike{}).Where("post_id = ?", p.ID).Count(&likes)
		db.Model(&models.Comment{}).Where("post_id = ?", p.ID).Count(&comments)
		assert.EqualValues(t, likes, p.LikeCount)
		assert.EqualValues(t, comments, p.CommentCount)
	}

	// Review aggregates match the review rows
	var strains []models.Strain
	require.NoError(t, db.Find(&strains).Error)
	for _, st := range strains {
		var reviews int64
		db.Model(&models.StrainReview{}).Where("strain_id = ?", st.ID).Count(&reviews)
		assert.EqualValues(t, reviews, st.ReviewCount, st.Name)
		assert.Equal(t, reviews > 0, st.AvgRating != nil, st.Name)
	}

	// No friendship pair appears twice
	var friendships []models.Friendship
	require.NoError(t, db.Find(&friendships).Error)
	pairs := map[string]bool{}
	for _, f := range friendships {
		key := models.FriendshipPairKey(f.RequesterID, f.ReceiverID)
		assert.False(t, pairs[key])
		pairs[key] = true
		assert.NotEqual(t, f.RequesterID, f.ReceiverID)
	}

	// Seeding again reuses the existing accounts
	require.NoError(t, s.SeedDevWith(counts))
	assert.EqualValues(t, 4, count(t, db, &models.User{}))
}

func TestClean(t *testing.T) {
	db, s := setup(t)
	require.NoError(t, s.SeedDevWith(DevCounts{Users: 3, Posts: 2, Comments: 2, MaxPuffsEach: 2, Days: 3}))

	require.NoError(t, s.Clean())
	for _, model := range models.All() {
		assert.Zero(t, count(t, db, model))
	}
}

// deletionIndex records strain removals
type deletionIndex struct {
	deleted []string
}

func (d *deletionIndex) IndexProfile(ctx context.Context, doc search.ProfileDoc) error { return nil }
func (d *deletionIndex) IndexStrain(ctx context.Context, doc search.StrainDoc) error   { return nil }

func (d *deletionIndex) DeleteStrain(ctx context.Context, strainID string) error {
	d.deleted = append(d.deleted, strainID)
	return nil
}

func (d *deletionIndex) SearchProfiles(ctx context.Context, term, excludeUserID string, limit int) ([]string, error) {
	return nil, nil
}

func (d *deletionIndex) SearchStrains(ctx context.Context, term string, limit int) ([]string, error) {
	return nil, nil
}

func TestCleanRemovesStrainsFromIndex(t *testing.T) {
	_, s := setup(t)
	strains, err := s.SeedStrains()
	require.NoError(t, err)

	index := &deletionIndex{}
	s.SetSearchIndex(index)
	require.NoError(t, s.Clean())

	ids := make([]string, 0, len(strains))
	for _, strain := range strains {
		ids = append(ids, strain.ID)
	}
	assert.ElementsMatch(t, ids, index.deleted)
}
