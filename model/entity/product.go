package entity

// Product is one accepted catalog row. It is a value: every ingestion builds
// fresh Products and a new fetch supersedes the previous list wholesale.
type Product struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Price            *float64 `json:"price"`
	Image            string   `json:"image"`
	Images           []string `json:"images"`
	Category         string   `json:"category"`
	Subcategory      string   `json:"subcategory"`
	Manufacturer     string   `json:"manufacturer"`
	ManufacturerCode string   `json:"manufacturerCode"`
	ProductReference string   `json:"productReference"`
}
