// Package catalog holds the static roast package offering. It is configuration
// data, not state: package ids map to a roast count and a display price, and the
// Stripe price reference is resolved from config at checkout time.
package catalog

import "errors"

// UnlimitedRoasts is the sentinel roast count for the unlimited package.
const UnlimitedRoasts = -1

// ErrUnknownPackage is returned when a package id is not in the catalog.
var ErrUnknownPackage = errors.New("unknown package")

// Package describes a purchasable roast bundle.
type Package struct {
	ID          string
	Name        string
	Description string
	Roasts      int // UnlimitedRoasts means the package grants unlimited use
	PriceUSD    int
}

var packages = []Package{
	{
		ID:          "starter",
		Name:        "Starter Pack",
		Description: "Perfect for trying out",
		Roasts:      5,
		PriceUSD:    5,
	},
	{
		ID:          "pro",
		Name:        "Pro Pack",
		Description: "Best value for teams",
		Roasts:      15,
		PriceUSD:    12,
	},
	{
		ID:          "unlimited",
		Name:        "Unlimited",
		Description: "Roast everything forever",
		Roasts:      UnlimitedRoasts,
		PriceUSD:    49,
	},
}

// All returns every package in display order.
func All() []Package {
	out := make([]Package, len(packages))
	copy(out, packages)
	return out
}

// ByID looks up a package by id.
func ByID(id string) (Package, error) {
	for _, p := range packages {
		if p.ID == id {
			return p, nil
		}
	}
	return Package{}, ErrUnknownPackage
}
