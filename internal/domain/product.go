package domain

import "github.com/shopspring/decimal"

func init() {
	// Prices travel as JSON numbers, matching the backend records.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a normalized catalog record. Rating is nil when the backend
// supplied no rating, which is distinct from a rating of zero.
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"productName"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Rating      *float64        `json:"rating"`
	Stock       int             `json:"stockAvailable"`
	Category    string          `json:"category"`
	ImagePath   string          `json:"imagePath,omitempty"`
	Sizes       []string        `json:"sizes"`
}

// ProductInput carries the admin-editable fields of a product.
type ProductInput struct {
	Name        string          `json:"productName"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Rating      *float64        `json:"rating"`
	Stock       int             `json:"stockAvailable"`
	Category    string          `json:"category"`
	ImagePath   string          `json:"imagePath"`
	Sizes       []string        `json:"sizes"`
}

// Validate reports the first problem with the input as a ValidationError.
func (in ProductInput) Validate() error {
	switch {
	case in.Name == "":
		return &ValidationError{Message: "product name is required"}
	case in.Category == "":
		return &ValidationError{Message: "category is required"}
	case !in.Price.IsPositive():
		return &ValidationError{Message: "price must be greater than zero"}
	case in.Stock < 0:
		return &ValidationError{Message: "stock cannot be negative"}
	case in.Rating != nil && (*in.Rating < 0 || *in.Rating > 5):
		return &ValidationError{Message: "rating must be between 0 and 5"}
	}
	return nil
}
