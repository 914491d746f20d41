package explosion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigbuilders/settlement-svc/internal/catalog"
	"github.com/rigbuilders/settlement-svc/internal/service/models/cartitem"
	"github.com/rigbuilders/settlement-svc/internal/service/models/prebuilt"
	"github.com/rigbuilders/settlement-svc/internal/service/models/procurementitem"
)

// fakeCatalog serves specs from a map and fails with err for everything else.
type fakeCatalog struct {
	specs map[string]*prebuilt.Spec
	err   error
}

func (f *fakeCatalog) GetSpec(_ context.Context, productID string) (*prebuilt.Spec, error) {
	if spec, ok := f.specs[productID]; ok {
		return spec, nil
	}
	if f.err != nil {
		return nil, f.err
	}
	return nil, catalog.ErrSpecNotFound
}

func TestExplodeDiscreteComponent(t *testing.T) {
	e := NewEngine(&fakeCatalog{})

	drafts, gap, err := e.Explode(context.Background(), cartitem.CartItem{
		ID:       "sku-4080",
		Name:     "GeForce RTX 4080 Super",
		Category: "gpu",
		Kind:     cartitem.KindDiscrete,
	})
	require.NoError(t, err)
	require.Nil(t, gap)
	require.Len(t, drafts, 1)

	d := drafts[0]
	assert.Equal(t, "GeForce RTX 4080 Super", d.ProductName)
	assert.Equal(t, "sku-4080", d.SKU)
	assert.Equal(t, procurementitem.Category("gpu"), d.Category)
	assert.Equal(t, procurementitem.StatusPending, d.Status)
	assert.True(t, d.CostPrice.IsZero())
}

func TestExplodePrebuiltFiveOfEightSlots(t *testing.T) {
	e := NewEngine(&fakeCatalog{specs: map[string]*prebuilt.Spec{
		"pb-creator": {
			Processor:   "Ryzen 9 7950X",
			Motherboard: "X670E Tomahawk",
			Memory:      "64GB DDR5-6000",
			Storage:     "2TB NVMe Gen4",
			PowerSupply: "850W Gold",
		},
	}})

	drafts, gap, err := e.Explode(context.Background(), cartitem.CartItem{
		ID:   "pb-creator",
		Name: "Creator Workstation",
		Kind: cartitem.KindPrebuilt,
	})
	require.NoError(t, err)
	require.Nil(t, gap)
	require.Len(t, drafts, 5)

	for _, d := range drafts {
		assert.Equal(t, procurementitem.StatusPending, d.Status)
		assert.True(t, d.CostPrice.IsZero())
		assert.Empty(t, d.SKU, "exploded parts have no discrete SKU")
	}
}

func TestExplodePrebuiltPreservesSlotOrder(t *testing.T) {
	e := NewEngine(&fakeCatalog{specs: map[string]*prebuilt.Spec{
		"pb-full": {
			Processor:    "i9-14900K",
			GraphicsCard: "RTX 4090",
			Motherboard:  "Z790 Hero",
			Memory:       "32GB DDR5",
			Storage:      "4TB NVMe",
			PowerSupply:  "1000W Platinum",
			Cooling:      "360mm AIO",
			Cabinet:      "O11 Dynamic",
		},
	}})

	drafts, gap, err := e.Explode(context.Background(), cartitem.CartItem{
		ID:   "pb-full",
		Name: "Flagship Rig",
		Kind: cartitem.KindPrebuilt,
	})
	require.NoError(t, err)
	require.Nil(t, gap)

	categories := make([]procurementitem.Category, 0, len(drafts))
	for _, d := range drafts {
		categories = append(categories, d.Category)
	}
	assert.Equal(t, []procurementitem.Category{
		procurementitem.CategoryCPU,
		procurementitem.CategoryGPU,
		procurementitem.CategoryMobo,
		procurementitem.CategoryRAM,
		procurementitem.CategoryStorage,
		procurementitem.CategoryPSU,
		procurementitem.CategoryCooler,
		procurementitem.CategoryCabinet,
	}, categories)
}

func TestExplodePrebuiltSpecNotFound(t *testing.T) {
	e := NewEngine(&fakeCatalog{})

	drafts, gap, err := e.Explode(context.Background(), cartitem.CartItem{
		ID:   "pb-gone",
		Name: "Discontinued Rig",
		Kind: cartitem.KindPrebuilt,
	})
	require.NoError(t, err, "a missing spec must not abort settlement")
	assert.Empty(t, drafts)
	require.NotNil(t, gap)
	assert.Equal(t, "pb-gone", gap.ProductID)
	assert.Equal(t, "spec not found", gap.Reason)
}

func TestExplodePrebuiltLookupTimeout(t *testing.T) {
	e := NewEngine(&fakeCatalog{err: context.DeadlineExceeded})

	drafts, gap, err := e.Explode(context.Background(), cartitem.CartItem{
		ID:   "pb-slow",
		Name: "Slow Rig",
		Kind: cartitem.KindPrebuilt,
	})
	require.NoError(t, err, "a timed-out lookup is treated like a missing spec")
	assert.Empty(t, drafts)
	require.NotNil(t, gap)
	assert.Equal(t, "spec lookup timed out", gap.Reason)
}

func TestExplodeRejectsUnknownKind(t *testing.T) {
	e := NewEngine(&fakeCatalog{})

	_, _, err := e.Explode(context.Background(), cartitem.CartItem{
		ID:   "x",
		Kind: cartitem.Kind("bundle"),
	})
	require.ErrorIs(t, err, cartitem.ErrInvalidKind)
}
