package domain

import "strings"

// CustomerDetails are the contact fields collected before checkout.
type CustomerDetails struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"contact"`
	Address string `json:"address"`
}

// Complete reports whether every field is present.
func (c CustomerDetails) Complete() bool {
	return strings.TrimSpace(c.Name) != "" &&
		strings.TrimSpace(c.Email) != "" &&
		strings.TrimSpace(c.Phone) != "" &&
		strings.TrimSpace(c.Address) != ""
}
