package models

import "time"

type MovementKind string

const (
	MovementCreate      MovementKind = "create"
	MovementRestock     MovementKind = "restock"
	MovementAdjustment  MovementKind = "adjustment"
	MovementConsumption MovementKind = "consumption"
	MovementDelete      MovementKind = "delete"
)

// StockMovement: one quantity-affecting event on an ingredient
type StockMovement struct {
	IngredientID int64        `json:"ingredientId"`
	Name         string       `json:"name"`
	Unit         Unit         `json:"unit"`
	Kind         MovementKind `json:"kind"`
	Delta        float64      `json:"delta"`
	Previous     float64      `json:"previous"`
	New          float64      `json:"new"`
	Reference    string       `json:"reference,omitempty"` // receipt no for consumption
	At           time.Time    `json:"at"`
}
