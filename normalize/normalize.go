// Package normalize flattens API payloads into the fixed CSV row schemas.
// Missing source fields become empty strings or defaults; list fields join
// with "; "; nested structures serialize to JSON text for single-cell storage.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"product-export/models"
)

const (
	listSeparator   = "; "
	descriptionMax  = 1000
	truncateMarker  = "..."
	dimensionsField = "Product Dimensions"
	weightField     = "Item Weight"
)

// DetailRow flattens one detail payload into the 18-column row schema.
func DetailRow(asin string, d *models.ProductDetail) *models.DetailRow {
	names := make([]string, 0, len(d.Categories))
	for _, cat := range d.Categories {
		names = append(names, cat.Name)
	}

	return &models.DetailRow{
		Asin:                  asin,
		Name:                  d.Name,
		Brand:                 d.Brand,
		URL:                   d.URL,
		Price:                 formatFloat(d.Price),
		PriceReduced:          formatFloat(d.PriceReduced),
		Rating:                formatFloat(d.Rating),
		ReviewCount:           formatInt(d.TotalRatings),
		Availability:          formatAvailability(d.InStock),
		Category:              strings.Join(names, listSeparator),
		BulletPoints:          strings.Join(d.Features, listSeparator),
		Description:           Truncate(d.Description, descriptionMax),
		ProductDimensions:     jsonText(SpecValue(d.DetailsTable, dimensionsField)),
		ProductSpecifications: specsJSON(d.DetailsTable),
		ProductWeight:         SpecValue(d.DetailsTable, weightField),
		MainImageURL:          d.MainImage,
		WhatsInBox:            strings.Join(d.WhatsInBox, listSeparator),
		VariantData:           rawJSON(d.Variants),
	}
}

// SearchRows flattens one result page into 12-column rows, one per product.
// Zero products is not an error; the result is simply empty.
func SearchRows(keyword string, page *models.SearchPage) []*models.SearchRow {
	if page == nil || len(page.Products) == 0 {
		return nil
	}

	rows := make([]*models.SearchRow, 0, len(page.Products))
	for _, p := range page.Products {
		free := deliveryFree(p.Delivery)
		store, quantity := pickupInfo(p.Pickup)
		rows = append(rows, &models.SearchRow{
			Keyword:         keyword,
			Title:           p.Title,
			Link:            p.Link,
			Price:           formatFloat(p.Price),
			Unit:            p.Unit,
			Rating:          formatFloat(p.Rating),
			Reviews:         formatInt(p.Reviews),
			ModelNumber:     p.ModelNumber,
			Brand:           p.Brand,
			DeliveryFree:    strconv.FormatBool(free),
			StoreName:       store,
			InStockQuantity: strconv.Itoa(quantity),
		})
	}
	return rows
}

// Truncate cuts text to max characters, appending a marker when it cut.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + truncateMarker
}

// SpecValue looks up a named entry in the specification table.
func SpecValue(table []models.SpecEntry, name string) string {
	for _, entry := range table {
		if entry.Name == name {
			return entry.Value
		}
	}
	return ""
}

// deliveryFree reads the free-delivery flag out of the raw delivery
// structure; malformed or absent structures default to false.
func deliveryFree(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var delivery struct {
		Free bool `json:"free"`
	}
	if err := json.Unmarshal(raw, &delivery); err != nil {
		return false
	}
	return delivery.Free
}

// pickupInfo reads the store name and in-stock quantity out of the raw
// pickup structure; malformed or absent structures default to "" and 0.
func pickupInfo(raw json.RawMessage) (string, int) {
	if len(raw) == 0 {
		return "", 0
	}
	var pickup struct {
		StoreName string `json:"store_name"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.Unmarshal(raw, &pickup); err != nil {
		return "", 0
	}
	return pickup.StoreName, pickup.Quantity
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// formatAvailability defaults to true when the upstream omitted the flag.
func formatAvailability(inStock *bool) string {
	if inStock == nil {
		return "true"
	}
	return strconv.FormatBool(*inStock)
}

// jsonText serializes a plain string as JSON, quoting included.
func jsonText(value string) string {
	data, err := json.Marshal(value)
	if err != nil {
		return `""`
	}
	return string(data)
}

// specsJSON serializes the full specification table; an absent table
// serializes as an empty object rather than null.
func specsJSON(table []models.SpecEntry) string {
	if table == nil {
		return "{}"
	}
	data, err := json.Marshal(table)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func rawJSON(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "{}"
	}
	return string(raw)
}
