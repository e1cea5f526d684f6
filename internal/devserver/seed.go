package devserver

import (
	"github.com/shopspring/decimal"

	"github.com/digitalhat/storefront/internal/domain"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedProducts is the static dev catalog.
func seedProducts() []domain.Product {
	return []domain.Product{
		{ID: "hat-001", Title: "Classic Snapback", Description: "Adjustable snapback cap with flat brim", Category: "caps", Brand: "DigitalHat", UnitPrice: price("24.99"), Currency: "USD", Stock: 120, ImageURL: "/img/hat-001.jpg"},
		{ID: "hat-002", Title: "Wool Fedora", Description: "Crushable wool felt fedora, wide brim", Category: "fedoras", Brand: "Brimline", UnitPrice: price("59.00"), Currency: "USD", Stock: 35, ImageURL: "/img/hat-002.jpg"},
		{ID: "hat-003", Title: "Cable Knit Beanie", Description: "Chunky knit beanie with fleece lining", Category: "beanies", Brand: "DigitalHat", UnitPrice: price("18.50"), Currency: "USD", Stock: 200, ImageURL: "/img/hat-003.jpg"},
		{ID: "hat-004", Title: "Trucker Mesh Cap", Description: "Foam front trucker cap with mesh back", Category: "caps", Brand: "Roadside", UnitPrice: price("16.00"), Currency: "USD", Stock: 80, ImageURL: "/img/hat-004.jpg"},
		{ID: "hat-005", Title: "Panama Straw Hat", Description: "Hand-woven toquilla straw, summer weight", Category: "sun", Brand: "Brimline", UnitPrice: price("89.00"), Currency: "USD", Stock: 12, ImageURL: "/img/hat-005.jpg"},
		{ID: "hat-006", Title: "Corduroy Dad Hat", Description: "Six-panel unstructured corduroy cap", Category: "caps", Brand: "Roadside", UnitPrice: price("21.00"), Currency: "USD", Stock: 64, ImageURL: "/img/hat-006.jpg"},
		{ID: "hat-007", Title: "Fisherman Beanie", Description: "Short ribbed beanie, rolled cuff", Category: "beanies", Brand: "DigitalHat", UnitPrice: price("14.99"), Currency: "USD", Stock: 150, ImageURL: "/img/hat-007.jpg"},
		{ID: "hat-008", Title: "Bucket Hat", Description: "Cotton twill bucket hat, packable", Category: "sun", Brand: "Roadside", UnitPrice: price("19.99"), Currency: "USD", Stock: 95, ImageURL: "/img/hat-008.jpg"},
		{ID: "hat-009", Title: "Flat Cap", Description: "Herringbone tweed flat cap, quilted lining", Category: "caps", Brand: "Brimline", UnitPrice: price("42.00"), Currency: "USD", Stock: 28, ImageURL: "/img/hat-009.jpg"},
		{ID: "hat-010", Title: "Pom Beanie", Description: "Merino blend beanie with faux fur pom", Category: "beanies", Brand: "Brimline", UnitPrice: price("22.50"), Currency: "USD", Stock: 110, ImageURL: "/img/hat-010.jpg"},
		{ID: "hat-011", Title: "Wide Brim Rancher", Description: "Stiff wool rancher with leather band", Category: "fedoras", Brand: "DigitalHat", UnitPrice: price("74.00"), Currency: "USD", Stock: 18, ImageURL: "/img/hat-011.jpg"},
		{ID: "hat-012", Title: "Running Visor", Description: "Lightweight quick-dry sports visor", Category: "sun", Brand: "Roadside", UnitPrice: price("12.00"), Currency: "USD", Stock: 140, ImageURL: "/img/hat-012.jpg"},
	}
}
