package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/metrics"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/puffbuddy/backend/internal/search"
	"github.com/puffbuddy/backend/internal/telemetry"
	"go.uber.org/zap"
)

const (
	backendElasticsearch = "elasticsearch"
	backendDatabase      = "database"
)

// searchProfiles matches display name or bio. Elasticsearch is tried first
// when configured; any error falls back to the database.
func (h *Handlers) searchProfiles(ctx context.Context, term, excludeUserID string) ([]models.Profile, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.Profile{}, nil
	}

	if h.search != nil {
		started := time.Now()
		spanCtx, span := telemetry.TraceSearchCall(ctx, "search_profiles", search.IndexProfiles, term)
		ids, err := h.search.SearchProfiles(spanCtx, term, excludeUserID, SearchLimit)
		if err == nil {
			telemetry.RecordServiceSuccess(span, len(ids))
			span.End()
			metrics.RecordSearch(search.IndexProfiles, backendElasticsearch, started)
			return h.social.ProfilesInOrder(ctx, ids)
		}
		telemetry.RecordServiceError(span, backendElasticsearch, err)
		span.End()
		metrics.SearchFallbacksTotal.WithLabelValues(search.IndexProfiles).Inc()
		logger.WarnWithFields("Profile search fell back to database", err, zap.String("term", term))
	}

	started := time.Now()
	profiles, err := h.social.SearchProfiles(ctx, term, excludeUserID, true, SearchLimit)
	if err != nil {
		return nil, err
	}
	metrics.RecordSearch(search.IndexProfiles, backendDatabase, started)
	return profiles, nil
}

// searchStrains matches strain names, through Elasticsearch when configured
func (h *Handlers) searchStrains(ctx context.Context, term string) ([]models.Strain, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.Strain{}, nil
	}

	if h.search != nil {
		started := time.Now()
		spanCtx, span := telemetry.TraceSearchCall(ctx, "search_strains", search.IndexStrains, term)
		ids, err := h.search.SearchStrains(spanCtx, term, SearchLimit)
		if err == nil {
			telemetry.RecordServiceSuccess(span, len(ids))
			span.End()
			metrics.RecordSearch(search.IndexStrains, backendElasticsearch, started)
			return h.strainsInOrder(ctx, ids)
		}
		telemetry.RecordServiceError(span, backendElasticsearch, err)
		span.End()
		metrics.SearchFallbacksTotal.WithLabelValues(search.IndexStrains).Inc()
		logger.WarnWithFields("Strain search fell back to database", err, zap.String("term", term))
	}

	started := time.Now()
	var strains []models.Strain
	err := h.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(term))+"%").
		Order("name ASC").
		Limit(SearchLimit).
		Find(&strains).Error
	if err != nil {
		return nil, err
	}
	metrics.RecordSearch(search.IndexStrains, backendDatabase, started)
	return strains, nil
}

// strainsInOrder loads strains keeping the order of ids and skipping missing rows
func (h *Handlers) strainsInOrder(ctx context.Context, ids []string) ([]models.Strain, error) {
	result := make([]models.Strain, 0, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var strains []models.Strain
	if err := h.db.WithContext(ctx).Where("id IN ?", ids).Find(&strains).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.Strain, len(strains))
	for _, s := range strains {
		byID[s.ID] = s
	}
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			result = append(result, s)
		}
	}
	return result, nil
}

// indexProfile pushes a profile to the search index, logging failures
func (h *Handlers) indexProfile(ctx context.Context, profile *models.Profile) {
	if h.search == nil || profile == nil {
		return
	}
	if err := h.search.IndexProfile(ctx, search.ProfileToSearchDoc(*profile)); err != nil {
		logger.WarnWithFields("Failed to index profile", err, logger.WithUserID(profile.UserID))
	}
}

// indexStrain pushes a strain to the search index, logging failures
func (h *Handlers) indexStrain(ctx context.Context, strain *models.Strain) {
	if h.search == nil || strain == nil {
		return
	}
	if err := h.search.IndexStrain(ctx, search.StrainToSearchDoc(*strain)); err != nil {
		logger.WarnWithFields("Failed to index strain", err, logger.WithStrainID(strain.ID))
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
