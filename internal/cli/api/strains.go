package api

import "net/http"

// ListStrains returns the strain catalog
func ListStrains() ([]Strain, error) {
	var resp struct {
		Strains []Strain `json:"strains"`
	}
	if err := do(http.MethodGet, "/strains", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Strains, nil
}

// AddStrain adds a strain to the catalog
func AddStrain(req AddStrainRequest) (*Strain, error) {
	var resp struct {
		Strain Strain `json:"strain"`
	}
	if err := do(http.MethodPost, "/strains", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Strain, nil
}

// ReviewStrain rates a strain, replacing the caller's earlier review.
// The returned strain carries the recomputed average.
func ReviewStrain(strainID string, rating int, review string) (*Review, *Strain, error) {
	body := map[string]interface{}{"rating": rating}
	if review != "" {
		body["review"] = review
	}
	var resp struct {
		Review Review `json:"review"`
		Strain Strain `json:"strain"`
	}
	if err := do(http.MethodPost, "/strains/"+escape(strainID)+"/reviews", body, &resp); err != nil {
		return nil, nil, err
	}
	return &resp.Review, &resp.Strain, nil
}
