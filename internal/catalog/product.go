package catalog

// Review is one customer review attached to a product.
type Review struct {
	Rating       float64 `json:"rating"`
	Title        string  `json:"title"`
	Text         string  `json:"text"`
	Verified     bool    `json:"verified"`
	HelpfulVotes int     `json:"helpful_votes"`
}

// Product is one final catalog entry. Products are immutable once built; the
// Tags field stays empty at this stage and is filled by downstream experiment
// tooling.
type Product struct {
	ID          string   `json:"id"`
	ParentASIN  string   `json:"parent_asin"`
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	BasePrice   *float64 `json:"base_price"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	Features    []string `json:"features"`
	Reviews     []Review `json:"reviews"`
	Store       string   `json:"store"`
	Tags        []string `json:"tags"`
}
