// Package repository holds the queries shared by several handler groups.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/puffbuddy/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrFriendshipNotFound = errors.New("friendship not found")
)

// SocialRepository answers profile and social-graph questions
type SocialRepository interface {
	// Profiles
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	ProfilesByUserID(ctx context.Context, userIDs []string) (map[string]*models.Profile, error)
	SearchProfiles(ctx context.Context, term, excludeUserID string, includeBio bool, limit int) ([]models.Profile, error)
	ProfilesInOrder(ctx context.Context, userIDs []string) ([]models.Profile, error)

	// Graph
	FriendIDs(ctx context.Context, userID string) ([]string, error)
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
	FeedAuthorIDs(ctx context.Context, userID string) ([]string, error)
	FriendshipBetween(ctx context.Context, userA, userB string) (*models.Friendship, error)
}

// socialRepository implements SocialRepository with GORM
type socialRepository struct {
	db *gorm.DB
}

// NewSocialRepository creates a new social repository
func NewSocialRepository(db *gorm.DB) SocialRepository {
	return &socialRepository{db: db}
}

// GetProfile returns the profile of a user or ErrProfileNotFound
func (r *socialRepository) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &profile, nil
}

// ProfilesByUserID loads profiles keyed by user id. Users without a
// profile are absent from the map.
func (r *socialRepository) ProfilesByUserID(ctx context.Context, userIDs []string) (map[string]*models.Profile, error) {
	result := make(map[string]*models.Profile, len(userIDs))
	ids := dedupe(userIDs)
	if len(ids) == 0 {
		return result, nil
	}

	var profiles []models.Profile
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	for i := range profiles {
		result[profiles[i].UserID] = &profiles[i]
	}
	return result, nil
}

// ProfilesInOrder loads the profiles of userIDs preserving the given order
func (r *socialRepository) ProfilesInOrder(ctx context.Context, userIDs []string) ([]models.Profile, error) {
	byID, err := r.ProfilesByUserID(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	profiles := make([]models.Profile, 0, len(userIDs))
	for _, id := range userIDs {
		if p, ok := byID[id]; ok {
			profiles = append(profiles, *p)
		}
	}
	return profiles, nil
}

// SearchProfiles does a case-insensitive substring match on display name,
// and on bio when includeBio is set. A blank term matches nothing.
func (r *socialRepository) SearchProfiles(ctx context.Context, term, excludeUserID string, includeBio bool, limit int) ([]models.Profile, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.Profile{}, nil
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"

	query := r.db.WithContext(ctx).Model(&models.Profile{})
	if includeBio {
		query = query.Where("(LOWER(display_name) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(bio, '')) LIKE ? ESCAPE '\\')", pattern, pattern)
	} else {
		query = query.Where("LOWER(display_name) LIKE ? ESCAPE '\\'", pattern)
	}
	if excludeUserID != "" {
		query = query.Where("user_id <> ?", excludeUserID)
	}

	var profiles []models.Profile
	if err := query.Order("display_name ASC").Limit(limit).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	return profiles, nil
}

// FriendIDs returns the users with an accepted friendship with userID
func (r *socialRepository) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	var friendships []models.Friendship
	err := r.db.WithContext(ctx).
		Where("status = ? AND (requester_id = ? OR receiver_id = ?)", models.FriendshipAccepted, userID, userID).
		Find(&friendships).Error
	if err != nil {
		return nil, fmt.Errorf("load friends: %w", err)
	}
	ids := make([]string, 0, len(friendships))
	for _, f := range friendships {
		ids = append(ids, f.OtherParty(userID))
	}
	return ids, nil
}

// FollowingIDs returns the users userID follows
func (r *socialRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load following: %w", err)
	}
	return ids, nil
}

// FeedAuthorIDs is the caller, their accepted friends and their followees
func (r *socialRepository) FeedAuthorIDs(ctx context.Context, userID string) ([]string, error) {
	friends, err := r.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := r.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := append([]string{userID}, friends...)
	return dedupe(append(ids, following...)), nil
}

// FriendshipBetween finds the friendship row in either direction
func (r *socialRepository) FriendshipBetween(ctx context.Context, userA, userB string) (*models.Friendship, error) {
	var friendship models.Friendship
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?)", userA, userB, userB, userA).
		First(&friendship).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFriendshipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load friendship: %w", err)
	}
	return &friendship, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// escapeLike escapes LIKE wildcards so user input matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
