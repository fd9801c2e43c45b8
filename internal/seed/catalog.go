package seed

import "github.com/puffbuddy/backend/internal/models"

type catalogEntry struct {
	Name        string
	Type        string
	THC         float64
	CBD         float64
	Description string
	Effects     []string
	Flavors     []string
}

func (e catalogEntry) model() models.Strain {
	thc, cbd, desc := e.THC, e.CBD, e.Description
	return models.Strain{
		Name:        e.Name,
		Type:        e.Type,
		THC:         &thc,
		CBD:         &cbd,
		Description: &desc,
		Effects:     models.StringList(e.Effects),
		Flavors:     models.StringList(e.Flavors),
		CreatedBy:   CatalogAuthor,
	}
}

// catalog is the built-in strain list
var catalog = []catalogEntry{
	{"Blue Dream", models.StrainHybrid, 18, 0.1, "Sweet berry hybrid with a gentle, full-body calm.",
		[]string{"relaxed", "happy", "creative"}, []string{"berry", "sweet", "herbal"}},
	{"OG Kush", models.StrainHybrid, 20, 0.2, "Classic earthy pine with heavy euphoria.",
		[]string{"euphoric", "relaxed", "hungry"}, []string{"earthy", "pine", "woody"}},
	{"Sour Diesel", models.StrainSativa, 22, 0.2, "Pungent fuel aroma and an energizing lift.",
		[]string{"energetic", "uplifted", "focused"}, []string{"diesel", "citrus", "pungent"}},
	{"Granddaddy Purple", models.StrainIndica, 20, 0.1, "Grape-forward indica for winding down.",
		[]string{"sleepy", "relaxed", "hungry"}, []string{"grape", "berry", "sweet"}},
	{"Girl Scout Cookies", models.StrainHybrid, 25, 0.2, "Sweet and earthy with strong euphoria.",
		[]string{"euphoric", "happy", "relaxed"}, []string{"sweet", "earthy", "mint"}},
	{"Jack Herer", models.StrainSativa, 18, 0.1, "Spicy pine sativa with clear-headed focus.",
		[]string{"focused", "creative", "uplifted"}, []string{"pine", "spicy", "woody"}},
	{"Northern Lights", models.StrainIndica, 17, 0.1, "Resinous, dreamy and famously mellow.",
		[]string{"relaxed", "sleepy", "happy"}, []string{"earthy", "sweet", "pine"}},
	{"Green Crack", models.StrainSativa, 19, 0.1, "Mango-tinged daytime energy.",
		[]string{"energetic", "focused", "happy"}, []string{"mango", "citrus", "sweet"}},
	{"Gelato", models.StrainHybrid, 22, 0.1, "Dessert-like hybrid with balanced calm.",
		[]string{"relaxed", "euphoric", "creative"}, []string{"sweet", "berry", "citrus"}},
	{"Wedding Cake", models.StrainHybrid, 24, 0.1, "Rich vanilla notes and a heavy finish.",
		[]string{"relaxed", "happy", "hungry"}, []string{"vanilla", "sweet", "earthy"}},
	{"Purple Haze", models.StrainSativa, 17, 0.1, "Psychedelic-era sativa with a creative buzz.",
		[]string{"creative", "euphoric", "energetic"}, []string{"berry", "earthy", "sweet"}},
	{"Bubba Kush", models.StrainIndica, 18, 0.2, "Coffee and chocolate hints with deep rest.",
		[]string{"sleepy", "relaxed", "hungry"}, []string{"coffee", "chocolate", "earthy"}},
	{"Pineapple Express", models.StrainHybrid, 19, 0.1, "Tropical hybrid for long, giggly afternoons.",
		[]string{"happy", "giggly", "energetic"}, []string{"pineapple", "tropical", "citrus"}},
	{"Durban Poison", models.StrainSativa, 20, 0.1, "Pure sativa with sweet anise and sharp focus.",
		[]string{"energetic", "focused", "uplifted"}, []string{"anise", "sweet", "pine"}},
	{"Gorilla Glue #4", models.StrainHybrid, 26, 0.1, "Sticky, potent and couch-locking.",
		[]string{"relaxed", "euphoric", "sleepy"}, []string{"earthy", "pine", "diesel"}},
	{"Harlequin", models.StrainSativa, 7, 10, "High-CBD sativa with clear, calm effects.",
		[]string{"focused", "relaxed", "clear"}, []string{"mango", "earthy", "sweet"}},
	{"ACDC", models.StrainHybrid, 1, 19, "CBD-dominant with barely any high.",
		[]string{"relaxed", "clear", "focused"}, []string{"earthy", "woody", "herbal"}},
	{"Zkittlez", models.StrainIndica, 19, 0.1, "Fruit candy indica with a mellow mood.",
		[]string{"relaxed", "happy", "sleepy"}, []string{"fruity", "sweet", "berry"}},
}
