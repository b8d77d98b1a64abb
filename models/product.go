// Package models defines the API payload shapes and the flat CSV row types
// shared by both export pipelines.
package models

import "encoding/json"

// ProductDetail is the success payload returned by the detail API for one
// product identifier. Scalar fields that the upstream may omit are pointers
// so the normalizer can tell "absent" from a zero value.
type ProductDetail struct {
	Name         string          `json:"name"`
	Brand        string          `json:"brand"`
	URL          string          `json:"url"`
	Price        *float64        `json:"price"`
	PriceReduced *float64        `json:"price_reduced"`
	Rating       *float64        `json:"rating"`
	TotalRatings *int            `json:"total_ratings"`
	InStock      *bool           `json:"in_stock"`
	Categories   []Category      `json:"categories"`
	Features     []string        `json:"features"`
	Description  string          `json:"description"`
	DetailsTable []SpecEntry     `json:"details_table"`
	MainImage    string          `json:"main_image"`
	WhatsInBox   []string        `json:"whats_in_box"`
	Variants     json.RawMessage `json:"variants"`
}

// Category is one node of the product's category breadcrumb.
type Category struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// SpecEntry is one row of the product specification table.
type SpecEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SearchPage is one page of search results from the search proxy.
type SearchPage struct {
	Products   []SearchProduct   `json:"products"`
	Pagination *SearchPagination `json:"serpapi_pagination"`
	Error      string            `json:"error"`
}

// HasNext reports whether the proxy advertised a further results page.
func (p *SearchPage) HasNext() bool {
	return p.Pagination != nil && p.Pagination.Next != ""
}

// SearchPagination carries the proxy's pagination hints.
type SearchPagination struct {
	Next string `json:"next"`
}

// SearchProduct is one product entry inside a search page. The delivery and
// pickup structures are kept raw because the upstream emits inconsistent
// shapes for them; the normalizer decodes them best-effort.
type SearchProduct struct {
	Title       string          `json:"title"`
	Link        string          `json:"link"`
	Price       *float64        `json:"price"`
	Unit        string          `json:"unit"`
	Rating      *float64        `json:"rating"`
	Reviews     *int            `json:"reviews"`
	ModelNumber string          `json:"model_number"`
	Brand       string          `json:"brand"`
	Delivery    json.RawMessage `json:"delivery"`
	Pickup      json.RawMessage `json:"pickup"`
}

// DetailRow is the flat 18-column CSV row for the detail pipeline. Field
// order here is the header order.
type DetailRow struct {
	Asin                  string `csv:"asin"`
	Name                  string `csv:"name"`
	Brand                 string `csv:"brand"`
	URL                   string `csv:"url"`
	Price                 string `csv:"price"`
	PriceReduced          string `csv:"price_reduced"`
	Rating                string `csv:"rating"`
	ReviewCount           string `csv:"review_count"`
	Availability          string `csv:"availability"`
	Category              string `csv:"category"`
	BulletPoints          string `csv:"bullet_points"`
	Description           string `csv:"description"`
	ProductDimensions     string `csv:"product_dimensions"`
	ProductSpecifications string `csv:"product_specifications"`
	ProductWeight         string `csv:"product_weight"`
	MainImageURL          string `csv:"main_image_url"`
	WhatsInBox            string `csv:"whats_in_box"`
	VariantData           string `csv:"variant_data"`
}

// DetailHeader returns the detail CSV header in row order.
func DetailHeader() []string {
	return []string{
		"asin", "name", "brand", "url", "price", "price_reduced", "rating",
		"review_count", "availability", "category", "bullet_points", "description",
		"product_dimensions", "product_specifications", "product_weight",
		"main_image_url", "whats_in_box", "variant_data",
	}
}

// Record returns the row as a CSV record matching DetailHeader.
func (r *DetailRow) Record() []string {
	return []string{
		r.Asin, r.Name, r.Brand, r.URL, r.Price, r.PriceReduced, r.Rating,
		r.ReviewCount, r.Availability, r.Category, r.BulletPoints, r.Description,
		r.ProductDimensions, r.ProductSpecifications, r.ProductWeight,
		r.MainImageURL, r.WhatsInBox, r.VariantData,
	}
}

// SearchRow is the flat 12-column CSV row for the search pipeline.
type SearchRow struct {
	Keyword         string `csv:"keyword"`
	Title           string `csv:"title"`
	Link            string `csv:"link"`
	Price           string `csv:"price"`
	Unit            string `csv:"unit"`
	Rating          string `csv:"rating"`
	Reviews         string `csv:"reviews"`
	ModelNumber     string `csv:"model_number"`
	Brand           string `csv:"brand"`
	DeliveryFree    string `csv:"delivery_free"`
	StoreName       string `csv:"store_name"`
	InStockQuantity string `csv:"in_stock_quantity"`
}

// SearchHeader returns the search CSV header in row order.
func SearchHeader() []string {
	return []string{
		"keyword", "title", "link", "price", "unit", "rating", "reviews",
		"model_number", "brand", "delivery_free", "store_name", "in_stock_quantity",
	}
}

// Record returns the row as a CSV record matching SearchHeader.
func (r *SearchRow) Record() []string {
	return []string{
		r.Keyword, r.Title, r.Link, r.Price, r.Unit, r.Rating, r.Reviews,
		r.ModelNumber, r.Brand, r.DeliveryFree, r.StoreName, r.InStockQuantity,
	}
}

// RunSummary accumulates the outcome of one detail run.
type RunSummary struct {
	Attempted        int
	Succeeded        int
	FailedKeys       []string
	RemainingCredits *int
}

// Failed returns the number of keys that yielded no row.
func (s *RunSummary) Failed() int {
	return len(s.FailedKeys)
}
