package domain

// Category is a top-level navigation section of the store.
type Category struct {
	Slug        string
	Name        string
	Description string
	// Placeholder categories appear in navigation but have no listing yet.
	Placeholder bool
}

// Categories is the fixed navigation order of the store.
var Categories = []Category{
	{Slug: "skincare", Name: "العناية بالبشرة", Description: "منظفات، سيروم، مرطبات وواقيات شمس لكل أنواع البشرة."},
	{Slug: "haircare", Name: "العناية بالشعر", Description: "شامبو، بلسم، زيوت وماسكات لشعر صحي ولامع."},
	{Slug: "makeup", Name: "المكياج", Description: "أساس، أحمر شفاه، ظلال عيون وكل ما تحتاجينه لإطلالتك."},
	{Slug: "perfume", Name: "العطور", Description: "تشكيلة العطور قادمة قريباً.", Placeholder: true},
}

// CategoryBySlug looks up a category by its URL slug.
func CategoryBySlug(slug string) (Category, bool) {
	for _, c := range Categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}
