package products

import "strings"

type ProductForm struct {
	CategoryID        string   `json:"category_id" validate:"required,max=50"`
	Title             string   `json:"title" validate:"required,max=200"`
	Subtitle          string   `json:"subtitle" validate:"max=200"`
	Overview          string   `json:"overview" validate:"max=5000"`
	MaterialNumber    string   `json:"material_number" validate:"max=100"`
	ISO               string   `json:"iso" validate:"max=100"`
	ShankSize         string   `json:"shank_size" validate:"max=100"`
	CuttingConditions []string `json:"cutting_conditions" validate:"max=50,dive,max=500"`
	Abrasive          string   `json:"abrasive" validate:"max=100"`
	MachineHP         string   `json:"machine_hp" validate:"max=100"`
	CuttingMaterial   string   `json:"cutting_material" validate:"max=100"`
	Images            []string `json:"images" validate:"max=20,dive,url"`
	ProductImg        string   `json:"product_img" validate:"omitempty,url"`
	OverviewImg       string   `json:"overview_img" validate:"omitempty,url"`
	RelatedParts      []string `json:"related_parts" validate:"max=50,dive,required"`
	Featured          bool     `json:"featured"`
	Price             float64  `json:"price" validate:"gte=0"`
}

func (f ProductForm) toProduct() Product {
	return Product{
		CategoryID:        strings.TrimSpace(f.CategoryID),
		Title:             strings.TrimSpace(f.Title),
		Subtitle:          strings.TrimSpace(f.Subtitle),
		Overview:          f.Overview,
		MaterialNumber:    strings.TrimSpace(f.MaterialNumber),
		ISO:               strings.TrimSpace(f.ISO),
		ShankSize:         strings.TrimSpace(f.ShankSize),
		CuttingConditions: nonNil(f.CuttingConditions),
		Abrasive:          strings.TrimSpace(f.Abrasive),
		MachineHP:         strings.TrimSpace(f.MachineHP),
		CuttingMaterial:   strings.TrimSpace(f.CuttingMaterial),
		Images:            nonNil(f.Images),
		ProductImg:        strings.TrimSpace(f.ProductImg),
		OverviewImg:       strings.TrimSpace(f.OverviewImg),
		RelatedParts:      nonNil(f.RelatedParts),
		Featured:          f.Featured,
		Price:             f.Price,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
