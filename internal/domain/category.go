// Package domain holds the FII types shared across modules and the
// interfaces of the external collaborators (market data, prices, narratives).
package domain

import (
	"fmt"
	"strings"
)

// Category is a fund strategy. Each category has its own scoring weights and
// target allocation.
type Category string

const (
	CategoryCRI         Category = "cri"
	CategoryShopping    Category = "shopping"
	CategoryLogistica   Category = "logistica"
	CategoryEscritorio  Category = "escritorio"
	CategoryRendaUrbana Category = "renda_urbana"
	CategoryFOF         Category = "fof"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryCRI,
	CategoryShopping,
	CategoryLogistica,
	CategoryEscritorio,
	CategoryRendaUrbana,
	CategoryFOF,
}

var categoryNames = map[Category]string{
	CategoryCRI:         "Fundos de CRI",
	CategoryShopping:    "Fundos de Shopping",
	CategoryLogistica:   "Fundos de Logística",
	CategoryEscritorio:  "Fundos de Escritório",
	CategoryRendaUrbana: "Fundos de Renda Urbana",
	CategoryFOF:         "Fundos de Fundos (FoF)",
}

// DisplayName returns the Portuguese label used in reports.
// Unknown categories are returned verbatim.
func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

// IsKnown reports whether c is one of the fixed categories.
func (c Category) IsKnown() bool {
	_, ok := categoryNames[c]
	return ok
}

// ParseCategory normalises user input ("Renda_Urbana ", "FOF") into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsKnown() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
