package model

// CandidateItem is one read-only catalog entry.
type CandidateItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	PriceTier   string   `json:"priceTier"`
	Tags        []string `json:"tags"`
	HasAPI      bool     `json:"hasApi"`
	URL         string   `json:"url,omitempty"`
}

// CatalogFilter narrows a catalog search. Empty fields do not filter.
type CatalogFilter struct {
	Query    string
	Category string
	// Categories matches any of the listed catalog categories.
	Categories []string
	Price      PricePreference
	Features   []string
	Limit      int
}
