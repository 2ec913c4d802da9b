package types

// StringMap holds flat key/value pairs persisted as jsonb (client-supplied
// contract data, payment instructions).
type StringMap map[string]string

// StringSlice is a jsonb-serialized list of strings (required fields,
// delivery formats, reference links).
type StringSlice []string

// TemplateItem is one default line item serialized inside a proposal template.
type TemplateItem struct {
	Name      string `json:"name"`
	Details   string `json:"details,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	ShowPrice bool   `json:"show_price"`
}
