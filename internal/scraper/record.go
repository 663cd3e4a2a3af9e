package scraper

import (
	"encoding/json"
	"fmt"

	"egoryolkin/autosearcher/logger"
	apperrors "egoryolkin/autosearcher/pkg/errors"
)

// detailURLTemplate builds the consumer-facing product page from the item id
const detailURLTemplate = "https://www.wildberries.ru/catalog/%d/detail.aspx"

// minorUnitsPerRuble — the listing endpoint encodes prices ×100
const minorUnitsPerRuble = 100

// ProductRecord is one scraped product. Records are value types and never
// mutated after extraction; prices are whole rubles.
type ProductRecord struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	ListPrice int     `json:"price"`
	SalePrice int     `json:"sale_price"`
	Brand     string  `json:"brand"`
	Rating    float64 `json:"rating"`
	Feedbacks int     `json:"feedbacks"`
	Supplier  string  `json:"supplier,omitempty"`
	DetailURL string  `json:"link"`
}

// Wire shapes of the listing endpoint. Products are kept raw so one
// malformed item cannot fail decoding for the whole page.
type listingPage struct {
	Data struct {
		Products []json.RawMessage `json:"products"`
	} `json:"data"`
}

type rawProduct struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand"`
	Rating    float64   `json:"rating"`
	Feedbacks int       `json:"feedbacks"`
	Supplier  string    `json:"supplier"`
	Sizes     []rawSize `json:"sizes"`
}

type rawSize struct {
	Price rawPrice `json:"price"`
}

type rawPrice struct {
	Basic   int64 `json:"basic"`
	Product int64 `json:"product"`
}

// extractRecords converts one page payload into validated records. Malformed
// items are dropped with a warning; the page itself is never aborted.
func extractRecords(payload []byte, log *logger.Logger) []ProductRecord {
	var page listingPage
	if err := json.Unmarshal(payload, &page); err != nil {
		log.Warn().
			Err(apperrors.NewExtraction("", "unparseable listing payload", err)).
			Msg("Dropping page payload")
		return nil
	}

	records := make([]ProductRecord, 0, len(page.Data.Products))
	for _, raw := range page.Data.Products {
		record, ok := extractRecord(raw, log)
		if !ok {
			continue
		}
		records = append(records, record)
	}
	return records
}

// extractRecord converts a single raw item. The second return value reports
// whether the item produced a record.
func extractRecord(raw json.RawMessage, log *logger.Logger) (ProductRecord, bool) {
	var item rawProduct
	if err := json.Unmarshal(raw, &item); err != nil {
		log.Warn().
			Err(apperrors.NewExtraction("", "malformed product item", err)).
			Msg("Skipping product item")
		return ProductRecord{}, false
	}

	if item.ID == 0 {
		log.Warn().
			Err(apperrors.NewExtraction("", "product item without id", nil)).
			Msg("Skipping product item")
		return ProductRecord{}, false
	}

	// An item with no sizes is not a purchasable SKU, not an error
	if len(item.Sizes) == 0 {
		return ProductRecord{}, false
	}

	// First size entry only; size-level price variance is not modeled
	price := item.Sizes[0].Price

	name := item.Name
	if name == "" {
		name = "N/A"
	}
	brand := item.Brand
	if brand == "" {
		brand = "N/A"
	}

	return ProductRecord{
		ID:        item.ID,
		Name:      name,
		ListPrice: int(price.Basic / minorUnitsPerRuble),
		SalePrice: int(price.Product / minorUnitsPerRuble),
		Brand:     brand,
		Rating:    item.Rating,
		Feedbacks: item.Feedbacks,
		Supplier:  item.Supplier,
		DetailURL: fmt.Sprintf(detailURLTemplate, item.ID),
	}, true
}
