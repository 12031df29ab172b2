package model

// Product is a catalog or caller-supplied product candidate. The workflow
// takes a read-only snapshot at product discovery; later catalog mutations
// do not affect an in-flight job.
type Product struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ImagePrompt string `json:"image_prompt"`
}

// ColorScheme is a storefront palette, either caller-supplied or generated.
type ColorScheme struct {
	PrimaryColor   string   `json:"primaryColor"`
	SecondaryColor string   `json:"secondaryColor"`
	AccentColors   []string `json:"accentColors"`
}

// NicheAnalysis is the structured result of analyzing a free-text niche
// description. The workflow only needs NicheName; the rest is kept on the
// job record for the dashboard.
type NicheAnalysis struct {
	NicheName         string   `json:"niche_name"`
	MarketOpportunity int      `json:"market_opportunity"`
	CompetitionLevel  int      `json:"competition_level"`
	RecommendedColors []string `json:"recommended_colors"`
	TargetAudience    string   `json:"target_audience"`
	KeyProducts       []string `json:"key_products"`
}
