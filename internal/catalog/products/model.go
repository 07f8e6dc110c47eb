package products

import (
	"time"
)

// Product represents a catalog item
type Product struct {
	ID                string    `json:"id"`
	CategoryID        string    `json:"category_id"`
	Title             string    `json:"title"`
	Subtitle          string    `json:"subtitle"`
	Overview          string    `json:"overview"`
	MaterialNumber    string    `json:"material_number"`
	ISO               string    `json:"iso"`
	ShankSize         string    `json:"shank_size"`
	CuttingConditions []string  `json:"cutting_conditions"`
	Abrasive          string    `json:"abrasive"`
	MachineHP         string    `json:"machine_hp"`
	CuttingMaterial   string    `json:"cutting_material"`
	Images            []string  `json:"images"`
	ProductImg        string    `json:"product_img"`
	OverviewImg       string    `json:"overview_img"`
	RelatedParts      []string  `json:"related_parts"`
	Featured          bool      `json:"featured"`
	Price             float64   `json:"price"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
