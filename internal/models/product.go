package models

// ProductIngredient: one recipe line, the amount of an ingredient used per unit sold
type ProductIngredient struct {
	IngredientID    int64   `json:"ingredientId"`
	Name            string  `json:"name,omitempty"`
	QuantityPerUnit float64 `json:"quantityPerUnit"`
	Unit            Unit    `json:"unit"`
}

type Product struct {
	ID             int64               `json:"id"`
	Title          string              `json:"title"`
	Price          float64             `json:"price"`
	CostPerServing float64             `json:"costPerServing"`
	Description    string              `json:"description"`
	Image          string              `json:"image"` // local URI reference
	CreatedAt      string              `json:"createdAt"`
	Ingredients    []ProductIngredient `json:"ingredients"`
}

func (p Product) UsesIngredient(id int64) bool {
	for _, pi := range p.Ingredients {
		if pi.IngredientID == id {
			return true
		}
	}
	return false
}
