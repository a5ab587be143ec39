package aggregate

import (
	"testing"

	"github.com/ginjaninja78/ventas-ledger/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(franja types.Franja, familia types.Familia, producto, unidades, precio string) types.CleanRecord {
	u := decimal.RequireFromString(unidades)
	p := decimal.RequireFromString(precio)
	return types.CleanRecord{
		Fecha:          "2024-03-01",
		Franja:         franja,
		Familia:        familia,
		Producto:       producto,
		Unidades:       u,
		PrecioUnitario: p,
		Importe:        u.Mul(p),
	}
}

// sampleLedger is café 2x1.5, té 1x4, café 2x2.5.
func sampleLedger() []types.CleanRecord {
	return []types.CleanRecord{
		record(types.Desayuno, types.Bebida, "Café", "2", "1.5"),
		record(types.Comida, types.Postre, "Té", "1", "4"),
		record(types.Desayuno, types.Bebida, "Café", "2", "2.5"),
	}
}

func revenues(groups Groups) map[string]string {
	out := make(map[string]string, len(groups))
	for _, g := range groups {
		out[g.Key] = g.Revenue.String()
	}
	return out
}

func groupKeys(groups Groups) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

func TestAggregate(t *testing.T) {
	summary := Aggregate(sampleLedger())

	assert.Equal(t, "12", summary.TotalRevenue.String())
	assert.Equal(t, "5", summary.TotalUnits.String())

	assert.Equal(t, map[string]string{"Café": "8", "Té": "4"}, revenues(summary.ByProducto))
	assert.Equal(t, map[string]string{"Desayuno": "8", "Comida": "4"}, revenues(summary.ByFranja))
	assert.Equal(t, map[string]string{"Bebida": "8", "Postre": "4"}, revenues(summary.ByFamilia))

	top := summary.TopProductos(DefaultTopN)
	assert.Equal(t, []string{"Café", "Té"}, groupKeys(top))
	assert.Equal(t, "8", top[0].Revenue.String())
	assert.Equal(t, "4", top[1].Revenue.String())
}

func TestAggregateEmpty(t *testing.T) {
	for _, records := range [][]types.CleanRecord{nil, {}} {
		summary := Aggregate(records)

		assert.True(t, summary.TotalRevenue.IsZero())
		assert.True(t, summary.TotalUnits.IsZero())
		assert.Empty(t, summary.ByProducto)
		assert.Empty(t, summary.ByFranja)
		assert.Empty(t, summary.ByFamilia)
		assert.Empty(t, summary.TopProductos(DefaultTopN))
	}
}

func TestGroupSumsMatchTotal(t *testing.T) {
	records := append(sampleLedger(),
		record(types.Comida, types.Principal, "Paella", "3", "12.35"),
		record(types.Comida, types.Entrante, "Croquetas", "4", "1.2"),
	)
	summary := Aggregate(records)

	for _, groups := range []Groups{summary.ByProducto, summary.ByFranja, summary.ByFamilia} {
		sum := decimal.Zero
		for _, g := range groups {
			sum = sum.Add(g.Revenue)
		}
		assert.True(t, sum.Equal(summary.TotalRevenue), "%s != %s", sum, summary.TotalRevenue)
	}
}

func TestGroupSumIsAdditive(t *testing.T) {
	a := sampleLedger()
	b := []types.CleanRecord{
		record(types.Comida, types.Bebida, "Café", "1", "1.5"),
		record(types.Comida, types.Principal, "Paella", "1", "12"),
	}

	whole, err := GroupSum(append(append([]types.CleanRecord{}, a...), b...), types.FieldProducto)
	require.NoError(t, err)
	left, err := GroupSum(a, types.FieldProducto)
	require.NoError(t, err)
	right, err := GroupSum(b, types.FieldProducto)
	require.NoError(t, err)

	want := left.Map()
	for key, revenue := range right.Map() {
		if current, ok := want[key]; ok {
			want[key] = current.Add(revenue)
		} else {
			want[key] = revenue
		}
	}

	got := whole.Map()
	require.Len(t, got, len(want))
	for key, revenue := range want {
		assert.True(t, revenue.Equal(got[key]), key)
	}
}

func TestGroupSumFirstOccurrenceOrder(t *testing.T) {
	groups, err := GroupSum(sampleLedger(), types.FieldFranja)

	require.NoError(t, err)
	assert.Equal(t, []string{"Desayuno", "Comida"}, groupKeys(groups))
}

func TestGroupSumUnknownField(t *testing.T) {
	for _, field := range []string{types.FieldFecha, types.FieldImporte, "cliente"} {
		_, err := GroupSum(sampleLedger(), field)
		assert.Error(t, err, field)
	}
}

func TestTopNTiesKeepInputOrder(t *testing.T) {
	groups := Groups{
		{Key: "A", Revenue: decimal.NewFromInt(5)},
		{Key: "B", Revenue: decimal.NewFromInt(5)},
		{Key: "C", Revenue: decimal.NewFromInt(7)},
	}

	assert.Equal(t, []string{"C", "A", "B"}, groupKeys(TopN(groups, 3)))
	assert.Equal(t, []string{"C", "A"}, groupKeys(TopN(groups, 2)))
}

func TestTopNBounds(t *testing.T) {
	groups := Groups{
		{Key: "A", Revenue: decimal.NewFromInt(1)},
		{Key: "B", Revenue: decimal.NewFromInt(2)},
	}

	assert.Len(t, TopN(groups, 10), 2)
	assert.Empty(t, TopN(groups, 0))
	assert.Empty(t, TopN(groups, -3))
	assert.Empty(t, TopN(nil, 5))
}

func TestTopNDoesNotModifyInput(t *testing.T) {
	groups := Groups{
		{Key: "A", Revenue: decimal.NewFromInt(1)},
		{Key: "B", Revenue: decimal.NewFromInt(3)},
		{Key: "C", Revenue: decimal.NewFromInt(2)},
	}

	TopN(groups, 2)

	assert.Equal(t, []string{"A", "B", "C"}, groupKeys(groups))
}

func TestAggregateDoesNotModifyRecords(t *testing.T) {
	records := sampleLedger()
	before := make([]string, len(records))
	for i, r := range records {
		before[i] = r.Key()
	}

	Aggregate(records)

	for i, r := range records {
		assert.Equal(t, before[i], r.Key())
	}
}

func TestGroupsMap(t *testing.T) {
	m := Aggregate(sampleLedger()).ByProducto.Map()

	require.Len(t, m, 2)
	assert.Equal(t, "8", m["Café"].String())
	assert.Equal(t, "4", m["Té"].String())
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "12.50", FormatRevenue(decimal.RequireFromString("12.5")))
	assert.Equal(t, "0.00", FormatRevenue(decimal.Zero))
	assert.Equal(t, "3.46", FormatRevenue(decimal.RequireFromString("3.456")))
	assert.Equal(t, "5", FormatUnits(decimal.RequireFromString("5.0")))
	assert.Equal(t, "2.5", FormatUnits(decimal.RequireFromString("2.5")))
}
