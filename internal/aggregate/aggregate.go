// =============================================================================
// Ventas Ledger - Aggregator
// =============================================================================
//
// This module computes the business metrics shown on the sales dashboard:
//   - KPIs: total revenue (sum of importe) and total units
//   - Group sums of importe by producto, franja and familia
//   - The top-N products by revenue
//
// Everything is recomputed from the full record slice on every call; the
// input records are never modified.
//
// =============================================================================

package aggregate

import (
	"fmt"
	"sort"

	"github.com/ginjaninja78/ventas-ledger/internal/types"
	"github.com/shopspring/decimal"
)

// DefaultTopN is the number of products in the top list.
const DefaultTopN = 5

// GroupableFields lists the fields GroupSum accepts.
var GroupableFields = []string{
	types.FieldProducto,
	types.FieldFranja,
	types.FieldFamilia,
}

// =============================================================================
// SUMMARY STRUCTURES
// =============================================================================

// GroupTotal is the summed revenue of one category value.
type GroupTotal struct {
	Key     string          `json:"key"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Groups is a grouping in order of first occurrence.
type Groups []GroupTotal

// Map returns the grouping as a map from category value to revenue.
func (g Groups) Map() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(g))
	for _, total := range g {
		out[total.Key] = total.Revenue
	}
	return out
}

// Summary holds the KPIs and groupings of a clean record set.
type Summary struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalUnits   decimal.Decimal `json:"total_units"`
	ByProducto   Groups          `json:"by_producto"`
	ByFranja     Groups          `json:"by_franja"`
	ByFamilia    Groups          `json:"by_familia"`
}

// TopProductos returns the n best-selling products by revenue.
func (s Summary) TopProductos(n int) Groups {
	return TopN(s.ByProducto, n)
}

// =============================================================================
// AGGREGATION FUNCTIONS
// =============================================================================

// Aggregate computes the full Summary. An empty input yields zero totals
// and empty groupings.
func Aggregate(records []types.CleanRecord) Summary {
	revenue := decimal.Zero
	units := decimal.Zero

	for _, record := range records {
		revenue = revenue.Add(record.Importe)
		units = units.Add(record.Unidades)
	}

	return Summary{
		TotalRevenue: revenue,
		TotalUnits:   units,
		ByProducto:   mustGroupSum(records, types.FieldProducto),
		ByFranja:     mustGroupSum(records, types.FieldFranja),
		ByFamilia:    mustGroupSum(records, types.FieldFamilia),
	}
}

// GroupSum sums importe per distinct value of field.
//
// PARAMETERS:
//   - records: The clean records.
//   - field: One of GroupableFields.
//
// RETURNS:
//   - The group totals in order of first occurrence.
//   - An error if field cannot be grouped on.
func GroupSum(records []types.CleanRecord, field string) (Groups, error) {
	if !isGroupable(field) {
		return nil, fmt.Errorf("cannot group by field %q", field)
	}

	index := make(map[string]int)
	groups := Groups{}

	for _, record := range records {
		key := record.Value(field)
		i, exists := index[key]
		if !exists {
			i = len(groups)
			index[key] = i
			groups = append(groups, GroupTotal{Key: key, Revenue: decimal.Zero})
		}
		groups[i].Revenue = groups[i].Revenue.Add(record.Importe)
	}

	return groups, nil
}

// TopN returns the n groups with the highest revenue, highest first.
// Ties keep their first-occurrence order. The input is not modified.
func TopN(groups Groups, n int) Groups {
	sorted := make(Groups, len(groups))
	copy(sorted, groups)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Revenue.GreaterThan(sorted[j].Revenue)
	})

	if n < 0 {
		n = 0
	}
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func isGroupable(field string) bool {
	for _, f := range GroupableFields {
		if f == field {
			return true
		}
	}
	return false
}

// mustGroupSum is only called with GroupableFields.
func mustGroupSum(records []types.CleanRecord, field string) Groups {
	groups, err := GroupSum(records, field)
	if err != nil {
		panic(err)
	}
	return groups
}

// =============================================================================
// KPI FORMATTING
// =============================================================================

// FormatRevenue renders an amount with exactly two decimals, as shown on
// the dashboard KPI cards.
func FormatRevenue(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatUnits renders a unit count as a plain number.
func FormatUnits(d decimal.Decimal) string {
	return d.String()
}
