package service

import (
	"fmt"
	"strings"

	"github.com/puffbuddy/backend/internal/cli/api"
	"github.com/puffbuddy/backend/internal/cli/output"
)

// StrainService browses and reviews the strain catalog
type StrainService struct{}

// NewStrainService creates a new strain service
func NewStrainService() *StrainService {
	return &StrainService{}
}

// List prints the catalog, optionally filtered by type
func (s *StrainService) List(strainType string, limit int) error {
	if _, err := authenticate(); err != nil {
		return err
	}

	strains, err := api.ListStrains()
	if err != nil {
		return wrap("failed to list strains", err)
	}
	if strainType != "" {
		filtered := strains[:0]
		for _, st := range strains {
			if strings.EqualFold(st.Type, strainType) {
				filtered = append(filtered, st)
			}
		}
		strains = filtered
	}
	strains = limitSlice(strains, limit)

	if len(strains) == 0 && output.GetOutputFormat() != output.FormatJSON {
		output.PrintInfo("No strains found.")
		return nil
	}

	rows := make([][]string, 0, len(strains))
	for _, st := range strains {
		rows = append(rows, []string{
			st.ID,
			st.Name,
			st.Type,
			percent(st.THC),
			percent(st.CBD),
			rating(st.AvgRating, st.ReviewCount),
		})
	}
	return output.PrintList(strains, []string{"ID", "Name", "Type", "THC", "CBD", "Rating"}, rows)
}

// Add creates a strain
func (s *StrainService) Add(req api.AddStrainRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fmt.Errorf("strain name cannot be empty")
	}
	req.Type = strings.ToLower(req.Type)
	switch req.Type {
	case "indica", "sativa", "hybrid":
	default:
		return fmt.Errorf("strain type must be indica, sativa or hybrid")
	}
	if _, err := authenticate(); err != nil {
		return err
	}

	strain, err := api.AddStrain(req)
	if err != nil {
		return wrap("failed to add strain", err)
	}
	if output.GetOutputFormat() == output.FormatJSON {
		return output.PrintJSON(strain)
	}
	output.PrintSuccess("Added %s (%s)", strain.Name, strain.ID)
	return nil
}

// Review rates a strain from 1 to 5
func (s *StrainService) Review(strainID string, stars int, text string) error {
	if stars < 1 || stars > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	if _, err := authenticate(); err != nil {
		return err
	}

	_, strain, err := api.ReviewStrain(strainID, stars, text)
	if err != nil {
		if api.IsNotFound(err) {
			return fmt.Errorf("strain %s not found", strainID)
		}
		return wrap("failed to review strain", err)
	}
	if output.GetOutputFormat() == output.FormatJSON {
		return output.PrintJSON(strain)
	}
	output.PrintSuccess("Reviewed %s, now rated %s", strain.Name, rating(strain.AvgRating, strain.ReviewCount))
	return nil
}

func percent(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *v)
}

func rating(avg *float64, count int) string {
	if avg == nil || count == 0 {
		return "unrated"
	}
	return fmt.Sprintf("%.1f (%d review%s)", *avg, count, pluralize(count))
}
