package layouts

// SiteName is the storefront brand shown in titles and the header.
const SiteName = "زينة"

// CalculateTitle handles the conditional logic for the page title.
func CalculateTitle(title string) string {
	if title != "" {
		return title + " | " + SiteName
	}
	return SiteName + " | متجر الجمال"
}
