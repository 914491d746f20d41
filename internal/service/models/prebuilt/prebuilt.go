package prebuilt

import (
	"github.com/rigbuilders/settlement-svc/internal/service/models/procurementitem"
)

// Spec is the build sheet of a pre-built system: one field per slot the
// configurator knows about. Not every configuration populates every slot,
// so any field may be empty.
type Spec struct {
	Processor    string `json:"Processor"`
	GraphicsCard string `json:"Graphics Card"`
	Motherboard  string `json:"Motherboard"`
	Memory       string `json:"Memory"`
	Storage      string `json:"Storage"`
	PowerSupply  string `json:"Power Supply"`
	Cooling      string `json:"Cooling"`
	Cabinet      string `json:"Cabinet"`
}

// Slot pairs a build-sheet label with its procurement category and the part
// occupying it.
type Slot struct {
	Label    string
	Category procurementitem.Category
	Part     string
}

// Slots returns every slot of the spec in the canonical build-sheet order,
// including empty ones. The order is fixed so exploded procurement rows come
// out the same way every time.
func (s *Spec) Slots() []Slot {
	return []Slot{
		{Label: "Processor", Category: procurementitem.CategoryCPU, Part: s.Processor},
		{Label: "Graphics Card", Category: procurementitem.CategoryGPU, Part: s.GraphicsCard},
		{Label: "Motherboard", Category: procurementitem.CategoryMobo, Part: s.Motherboard},
		{Label: "Memory", Category: procurementitem.CategoryRAM, Part: s.Memory},
		{Label: "Storage", Category: procurementitem.CategoryStorage, Part: s.Storage},
		{Label: "Power Supply", Category: procurementitem.CategoryPSU, Part: s.PowerSupply},
		{Label: "Cooling", Category: procurementitem.CategoryCooler, Part: s.Cooling},
		{Label: "Cabinet", Category: procurementitem.CategoryCabinet, Part: s.Cabinet},
	}
}
