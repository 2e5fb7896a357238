package backend

import (
	"bytes"
	"encoding/json"
)

// ProductRecord is a product as the backend returns it. Loosely typed fields are
// kept raw and interpreted by the catalog.
type ProductRecord struct {
	ID          string          `json:"_id"`
	Name        string          `json:"productName"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	Rating      json.RawMessage `json:"rating"`
	Stock       json.RawMessage `json:"stockAvailable"`
	Category    string          `json:"category"`
	ImagePath   string          `json:"imagePath"`
	Sizes       json.RawMessage `json:"sizes"`
}

// IsNull reports whether a raw field was absent or JSON null.
func IsNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
