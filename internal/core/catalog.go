package core

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Visa type codes
const (
	VisaTurismo = "turismo"
	VisaTrabajo = "trabajo"
)

// VisaType describes one entry of the static visa catalog.
type VisaType struct {
	Code           string `json:"-" yaml:"code"`
	Name           string `json:"name" yaml:"name"`
	Price          int    `json:"price" yaml:"price"`
	Currency       string `json:"currency" yaml:"currency"`
	ProcessingTime string `json:"processing_time" yaml:"processing_time"`
}

// Deposit returns the required initial payment: fifty percent of the
// listed total price.
func (v VisaType) Deposit() int {
	return v.Price / 2
}

// Catalog is the ordered set of offered visa types. It marshals to the
// code-keyed object shape the API has always returned.
type Catalog struct {
	types map[string]VisaType
	order []string
}

// NewCatalog builds a catalog preserving the given order. Duplicate codes
// are rejected.
func NewCatalog(types []VisaType) (*Catalog, error) {
	c := &Catalog{types: make(map[string]VisaType, len(types))}
	for _, vt := range types {
		if vt.Code == "" {
			return nil, fmt.Errorf("visa type without code")
		}
		if _, ok := c.types[vt.Code]; ok {
			return nil, fmt.Errorf("duplicate visa type code: %s", vt.Code)
		}
		if vt.Price <= 0 {
			return nil, fmt.Errorf("visa type %s: price must be positive", vt.Code)
		}
		c.types[vt.Code] = vt
		c.order = append(c.order, vt.Code)
	}
	if len(c.order) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	return c, nil
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog([]VisaType{
		{
			Code:           VisaTurismo,
			Name:           "Visado de Turismo",
			Price:          1500,
			Currency:       "EUR",
			ProcessingTime: "1-2 meses",
		},
		{
			Code:           VisaTrabajo,
			Name:           "Visado por Contrato de Trabajo",
			Price:          2500,
			Currency:       "EUR",
			ProcessingTime: "1-2 meses",
		},
	})
	if err != nil {
		panic(err) // built-in data, cannot fail
	}
	return c
}

// LoadCatalog reads a catalog from a YAML file. The file holds a list of
// visa types under a top-level "visa_types" key.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var doc struct {
		VisaTypes []VisaType `yaml:"visa_types"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	return NewCatalog(doc.VisaTypes)
}

// Get returns the visa type for a code.
func (c *Catalog) Get(code string) (VisaType, bool) {
	vt, ok := c.types[code]
	return vt, ok
}

// List returns the visa types in catalog order.
func (c *Catalog) List() []VisaType {
	out := make([]VisaType, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, c.types[code])
	}
	return out
}

// MarshalJSON renders the catalog as an object keyed by visa type code.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.types)
}
