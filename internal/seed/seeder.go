// Package seed fills a database with fake PuffBuddy data for development.
package seed

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/puffbuddy/backend/internal/search"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedPassword is the password of every seeded account
const SeedPassword = "password123"

// SeedEmailDomain marks seeded accounts
const SeedEmailDomain = "seed.puffbuddy.dev"

// CatalogAuthor is the created_by of built-in catalog strains
const CatalogAuthor = "puffbuddy"

// DevCounts sizes a development seed
type DevCounts struct {
	Users        int
	Posts        int
	Comments     int
	MaxPuffsEach int
	Days         int
}

// DefaultDevCounts is used by SeedDev
var DefaultDevCounts = DevCounts{
	Users:        30,
	Posts:        150,
	Comments:     300,
	MaxPuffsEach: 40,
	Days:         30,
}

var (
	moods   = []string{"relaxed", "happy", "creative", "sleepy", "giggly", "focused", "hungry"}
	methods = []string{"joint", "bong", "vape", "pipe", "edible", "dab", "blunt"}
	spots   = []string{"couch", "balcony", "backyard", "park", "studio", "rooftop", "beach"}
)

// Seeder handles database seeding operations
type Seeder struct {
	db    *gorm.DB
	now   func() time.Time
	index search.Index
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db, now: time.Now}
}

// SetSearchIndex makes Clean drop removed strains from the search index
func (s *Seeder) SetSearchIndex(index search.Index) {
	s.index = index
}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev() error {
	return s.SeedDevWith(DefaultDevCounts)
}

// SeedDevWith seeds the development database with the given volumes
func (s *Seeder) SeedDevWith(counts DevCounts) error {
	log := func(msg string) {
		logger.Log.Info(msg)
	}

	log("Seeding strain catalog...")
	strains, err := s.SeedStrains()
	if err != nil {
		return fmt.Errorf("failed to seed strains: %w", err)
	}

	log("Creating users and profiles...")
	users, err := s.seedUsers(counts.Users)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	if len(users) < 2 {
		return nil
	}

	log("Creating friendships...")
	if err := s.seedFriendships(users); err != nil {
		return fmt.Errorf("failed to seed friendships: %w", err)
	}

	log("Creating follows...")
	if err := s.seedFollows(users); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	log("Creating posts...")
	posts, err := s.seedPosts(users, counts.Posts, counts.Days)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	log("Creating comments and likes...")
	if err := s.seedInteractions(users, posts, counts.Comments); err != nil {
		return fmt.Errorf("failed to seed interactions: %w", err)
	}

	log("Logging puffs...")
	if err := s.seedPuffs(users, strains, counts.MaxPuffsEach, counts.Days); err != nil {
		return fmt.Errorf("failed to seed puffs: %w", err)
	}

	log("Reviewing strains...")
	if err := s.seedReviews(users, strains); err != nil {
		return fmt.Errorf("failed to seed reviews: %w", err)
	}

	logger.Log.Info("Seed complete; run `migrate reindex` to refresh search",
		zap.Int("users", len(users)),
		zap.Int("posts", len(posts)),
		zap.Int("strains", len(strains)))
	return nil
}

// SeedStrains inserts the built-in strain catalog, skipping names that
// already exist in any case. It returns every catalog strain.
func (s *Seeder) SeedStrains() ([]models.Strain, error) {
	strains := make([]models.Strain, 0, len(catalog))
	created := 0
	for _, entry := range catalog {
		var existing models.Strain
		err := s.db.Where("LOWER(name) = ?", strings.ToLower(entry.Name)).First(&existing).Error
		if err == nil {
			strains = append(strains, existing)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}

		strain := entry.model()
		if err := s.db.Create(&strain).Error; err != nil {
			return nil, fmt.Errorf("failed to create strain %s: %w", entry.Name, err)
		}
		strains = append(strains, strain)
		created++
	}

	logger.Log.Info("Strain catalog ready",
		zap.Int("created", created),
		zap.Int("total", len(strains)))
	return strains, nil
}

// Clean removes all rows from every table (use with caution!)
func (s *Seeder) Clean() error {
	var strainIDs []string
	if s.index != nil {
		if err := s.db.Model(&models.Strain{}).Pluck("id", &strainIDs).Error; err != nil {
			return fmt.Errorf("failed to list strains: %w", err)
		}
	}

	all := models.All()
	for i := len(all) - 1; i >= 0; i-- {
		model := all[i]
		err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error
		if err != nil {
			return fmt.Errorf("failed to clean %T: %w", model, err)
		}
	}

	for _, id := range strainIDs {
		if err := s.index.DeleteStrain(context.Background(), id); err != nil {
			logger.Log.Warn("Failed to remove strain from search index", zap.String("strain_id", id), zap.Error(err))
		}
	}
	return nil
}

// seedUsers creates users with profiles; existing seed accounts are reused
func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	var users []models.User
	if err := s.db.Where("email LIKE ?", "%@"+SeedEmailDomain).Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) >= count {
		logger.Log.Info("Found existing seed users, skipping creation", zap.Int("seed_users", len(users)))
		return users, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashedStr := string(hashed)

	taken := make(map[string]bool, len(users))
	for _, u := range users {
		if u.Email != nil {
			taken[*u.Email] = true
		}
	}

	for len(users) < count {
		email := fmt.Sprintf("%s@%s", strings.ToLower(gofakeit.Username()), SeedEmailDomain)
		if taken[email] {
			continue
		}
		taken[email] = true

		name := gofakeit.Name()
		user := models.User{
			Email:         &email,
			Name:          name,
			PasswordHash:  &hashedStr,
			EmailVerified: true,
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			bio := gofakeit.HipsterSentence()
			location := fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.Country())
			profile := models.Profile{
				UserID:      user.ID,
				DisplayName: name,
				Bio:         &bio,
				Location:    &location,
				Tags:        pickTags(rand.Intn(3) + 1),
				JoinedAt:    gofakeit.DateRange(s.now().AddDate(-1, 0, 0), s.now()).UTC(),
			}
			return tx.Create(&profile).Error
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", email, err)
		}
		users = append(users, user)
	}
	return users, nil
}

// seedFriendships links random pairs, about two thirds of them accepted
func (s *Seeder) seedFriendships(users []models.User) error {
	seen := make(map[string]bool)
	for i := range users {
		for n := rand.Intn(4) + 1; n > 0; n-- {
			other := users[rand.Intn(len(users))]
			if other.ID == users[i].ID {
				continue
			}
			key := models.FriendshipPairKey(users[i].ID, other.ID)
			if seen[key] {
				continue
			}
			seen[key] = true

			var existing int64
			s.db.Model(&models.Friendship{}).
				Where("(requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?)",
					users[i].ID, other.ID, other.ID, users[i].ID).
				Count(&existing)
			if existing > 0 {
				continue
			}

			status := models.FriendshipAccepted
			if rand.Intn(3) == 0 {
				status = models.FriendshipPending
			}
			f := models.Friendship{RequesterID: users[i].ID, ReceiverID: other.ID, Status: status}
			if err := s.db.Create(&f).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedFollows(users []models.User) error {
	for i := range users {
		for n := rand.Intn(6); n > 0; n-- {
			other := users[rand.Intn(len(users))]
			if other.ID == users[i].ID {
				continue
			}
			follow := models.Follow{FollowerID: users[i].ID, FollowingID: other.ID}
			err := s.db.Where("follower_id = ? AND following_id = ?", follow.FollowerID, follow.FollowingID).
				FirstOrCreate(&follow).Error
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedPosts(users []models.User, count, days int) ([]models.Post, error) {
	posts := make([]models.Post, 0, count)
	start := s.now().AddDate(0, 0, -days)
	for i := 0; i < count; i++ {
		post := models.Post{
			UserID:    users[rand.Intn(len(users))].ID,
			Content:   gofakeit.HipsterSentence(),
			Type:      models.PostTypeText,
			CreatedAt: gofakeit.DateRange(start, s.now()).UTC(),
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// seedInteractions adds comments and likes, keeping the post counters in step
func (s *Seeder) seedInteractions(users []models.User, posts []models.Post, comments int) error {
	if len(posts) == 0 {
		return nil
	}

	commentCounts := make(map[string]int)
	for i := 0; i < comments; i++ {
		post := posts[rand.Intn(len(posts))]
		comment := models.Comment{
			PostID:    post.ID,
			UserID:    users[rand.Intn(len(users))].ID,
			Content:   gofakeit.HipsterSentence(),
			CreatedAt: gofakeit.DateRange(post.CreatedAt, s.now()).UTC(),
		}
		if err := s.db.Create(&comment).Error; err != nil {
			return err
		}
		commentCounts[post.ID]++
	}

	likeCounts := make(map[string]int)
	for _, post := range posts {
		for _, user := range users {
			if rand.Intn(5) != 0 {
				continue
			}
			like := models.PostLike{PostID: post.ID, UserID: user.ID}
			if err := s.db.Create(&like).Error; err != nil {
				return err
			}
			likeCounts[post.ID]++
		}
	}

	for _, post := range posts {
		err := s.db.Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]interface{}{
			"like_count":    likeCounts[post.ID],
			"comment_count": commentCounts[post.ID],
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedPuffs(users []models.User, strains []models.Strain, maxEach, days int) error {
	start := s.now().AddDate(0, 0, -days)
	for _, user := range users {
		n := rand.Intn(maxEach + 1)
		puffs := make([]models.SmokingPuff, 0, n)
		for i := 0; i < n; i++ {
			mood := moods[rand.Intn(len(moods))]
			method := methods[rand.Intn(len(methods))]
			spot := spots[rand.Intn(len(spots))]
			puff := models.SmokingPuff{
				UserID:     user.ID,
				Cigarettes: rand.Intn(5) + 1,
				Mood:       &mood,
				Method:     &method,
				Location:   &spot,
				Timestamp:  gofakeit.DateRange(start, s.now()).UTC(),
			}
			if len(strains) > 0 {
				name := strains[rand.Intn(len(strains))].Name
				puff.Strain = &name
			}
			puffs = append(puffs, puff)
		}
		if len(puffs) == 0 {
			continue
		}
		if err := s.db.CreateInBatches(&puffs, 100).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedReviews has each user rate a few strains, then recomputes averages
func (s *Seeder) seedReviews(users []models.User, strains []models.Strain) error {
	if len(strains) == 0 {
		return nil
	}

	for _, user := range users {
		for n := rand.Intn(4); n > 0; n-- {
			strain := strains[rand.Intn(len(strains))]
			text := gofakeit.HipsterSentence()
			review := models.StrainReview{
				StrainID: strain.ID,
				UserID:   user.ID,
				Rating:   rand.Intn(5) + 1,
				Review:   &text,
			}
			err := s.db.Where("strain_id = ? AND user_id = ?", strain.ID, user.ID).
				FirstOrCreate(&review).Error
			if err != nil {
				return err
			}
		}
	}

	for _, strain := range strains {
		var ratings []int
		if err := s.db.Model(&models.StrainReview{}).Where("strain_id = ?", strain.ID).Pluck("rating", &ratings).Error; err != nil {
			return err
		}
		var avg *float64
		if len(ratings) > 0 {
			sum := 0
			for _, r := range ratings {
				sum += r
			}
			v := math.Round(float64(sum)/float64(len(ratings))*10) / 10
			avg = &v
		}
		err := s.db.Model(&models.Strain{}).Where("id = ?", strain.ID).Updates(map[string]interface{}{
			"avg_rating":   avg,
			"review_count": len(ratings),
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func pickTags(n int) models.StringList {
	perm := rand.Perm(len(models.SuggestedTags))
	tags := make(models.StringList, 0, n)
	for _, i := range perm[:n] {
		tags = append(tags, models.SuggestedTags[i])
	}
	return tags
}
