package landing

import (
	"embed"
	"html/template"

	"visaserbia/internal/core"
)

//go:embed templates/*.html
var templateFS embed.FS

// PricingCard is one visa offering as shown on the page. Deposit is
// always half the total price.
type PricingCard struct {
	Code           string
	Name           string
	Price          int
	Deposit        int
	Currency       string
	ProcessingTime string
}

// PageData feeds the home template.
type PageData struct {
	Title        string
	Pricing      []PricingCard
	Testimonials []core.Testimonial
	WhatsAppURL  string
	PayPalURL    string
}

// pricingCards maps the catalog onto display cards, preserving catalog
// order.
func pricingCards(catalog *core.Catalog) []PricingCard {
	types := catalog.List()
	cards := make([]PricingCard, 0, len(types))
	for _, vt := range types {
		cards = append(cards, PricingCard{
			Code:           vt.Code,
			Name:           vt.Name,
			Price:          vt.Price,
			Deposit:        vt.Deposit(),
			Currency:       vt.Currency,
			ProcessingTime: vt.ProcessingTime,
		})
	}
	return cards
}

func parseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}
