package domain

// TemplateCategory is an entry of the starter-image gallery.
type TemplateCategory struct {
	Name  string `json:"name"`
	Seed  string `json:"seed"`
	Label string `json:"label"`
}

var templateCatalog = []TemplateCategory{
	{Name: "Ecommerce", Seed: "store", Label: "Sales Focus"},
	{Name: "Lifestyle", Seed: "fashion", Label: "Aesthetic"},
	{Name: "Corporate", Seed: "business", Label: "Pro"},
	{Name: "Creative", Seed: "art", Label: "Bold"},
	{Name: "Tech", Seed: "tech", Label: "Modern"},
	{Name: "Food", Seed: "food", Label: "Delicious"},
}

// Templates returns the gallery categories in display order.
func Templates() []TemplateCategory {
	out := make([]TemplateCategory, len(templateCatalog))
	copy(out, templateCatalog)
	return out
}

// FindTemplate looks up a category by seed.
func FindTemplate(seed string) (TemplateCategory, bool) {
	for _, t := range templateCatalog {
		if t.Seed == seed {
			return t, true
		}
	}
	return TemplateCategory{}, false
}
