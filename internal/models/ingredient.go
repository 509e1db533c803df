package models

import "strings"

// Unit: stock unit of measure for an ingredient
type Unit string

const (
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitPiece      Unit = "pc"
)

var validUnits = map[Unit]struct{}{
	UnitGram:       {},
	UnitKilogram:   {},
	UnitMilliliter: {},
	UnitLiter:      {},
	UnitPiece:      {},
}

func (u Unit) Valid() bool {
	_, ok := validUnits[u]
	return ok
}

// ParseUnit accepts case and surrounding whitespace variations ("KG ", "Pc").
func ParseUnit(s string) (Unit, bool) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	return u, u.Valid()
}

// Ingredient: raw stock item consumed by products.
// InitialQuantity is the cumulative amount ever added and is never reduced by consumption.
type Ingredient struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Unit            Unit    `json:"unit"`
	Quantity        float64 `json:"quantity"`
	InitialQuantity float64 `json:"initialQuantity"`
	Cost            float64 `json:"cost"`
	LastAdded       string  `json:"lastAdded"`
}

// NormalizeName is the matching key used for merge-on-add.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (i Ingredient) Matches(name string, unit Unit) bool {
	return NormalizeName(i.Name) == NormalizeName(name) && i.Unit == unit
}
