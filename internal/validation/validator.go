// =============================================================================
// Ventas Ledger - Validation Engine
// =============================================================================
//
// This module implements the clean pass: one fused walk over the raw
// records that normalizes, validates and de-duplicates them.
//
// VALIDATION ORDER (first failure wins):
//   1. fecha parses to a calendar date
//   2. franja is Desayuno or Comida (after capitalization)
//   3. familia is Bebida, Entrante, Principal or Postre
//   4. producto is present and non-empty
//   5. unidades and precio_unitario are numbers greater than zero
//   6. importe is recomputed as unidades * precio_unitario
//   7. the record is not an exact duplicate of an earlier accepted one
//
// ERROR HANDLING:
//   Rejection is silent filtering. Clean returns only the survivors.
//   CleanWithReport additionally returns why each record was dropped, for
//   logging and diagnostics; it never changes which records survive.
//
// =============================================================================

package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ginjaninja78/ventas-ledger/internal/normalize"
	"github.com/ginjaninja78/ventas-ledger/internal/types"
)

// =============================================================================
// REJECTION TYPES
// =============================================================================

// Rule names the check a record failed.
type Rule string

const (
	RuleFecha     Rule = "fecha"
	RuleFranja    Rule = "franja"
	RuleFamilia   Rule = "familia"
	RuleProducto  Rule = "producto"
	RuleCantidad  Rule = "cantidad"
	RuleDuplicado Rule = "duplicado"
)

// Rejection describes a dropped record.
type Rejection struct {
	// Line is the source line number of the record.
	Line int `json:"line"`

	// Rule is the check that failed.
	Rule Rule `json:"rule"`

	// Field is the field that failed the check. Empty for duplicates.
	Field string `json:"field,omitempty"`

	// Value is the raw value that failed the check.
	Value string `json:"value,omitempty"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// Error implements the error interface.
func (r *Rejection) Error() string {
	if r.Field == "" {
		return fmt.Sprintf("line %d [%s]: %s", r.Line, r.Rule, r.Message)
	}
	return fmt.Sprintf("line %d [%s] field '%s': %s (value: '%s')",
		r.Line, r.Rule, r.Field, r.Message, r.Value)
}

// Outcome is the result of checking one record: either a CleanRecord or a
// Rejection, never both.
type Outcome struct {
	Record    types.CleanRecord
	Rejection *Rejection
}

// Accepted reports whether the record survived the field checks.
func (o Outcome) Accepted() bool {
	return o.Rejection == nil
}

// =============================================================================
// REPORT
// =============================================================================

// Report summarizes one clean pass.
type Report struct {
	// Total is the number of raw records examined.
	Total int

	// Accepted is the number of records that survived.
	Accepted int

	// Rejections lists every dropped record in input order.
	Rejections []Rejection

	// ByRule counts rejections per rule.
	ByRule map[Rule]int
}

// Rejected returns the number of dropped records.
func (r *Report) Rejected() int {
	return len(r.Rejections)
}

func (r *Report) add(rej *Rejection) {
	r.Rejections = append(r.Rejections, *rej)
	r.ByRule[rej.Rule]++
}

// =============================================================================
// CLEAN PASS
// =============================================================================

// Clean normalizes, validates and de-duplicates raw records. Rejected
// records are dropped silently; survivors keep their relative order.
func Clean(raw []types.RawRecord) []types.CleanRecord {
	clean, _ := CleanWithReport(raw)
	return clean
}

// CleanWithReport is Clean plus a Report explaining every rejection.
// The duplicate set lives only for the duration of this call.
func CleanWithReport(raw []types.RawRecord) ([]types.CleanRecord, *Report) {
	report := &Report{
		Total:  len(raw),
		ByRule: make(map[Rule]int),
	}
	clean := make([]types.CleanRecord, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, record := range raw {
		outcome := Check(record)
		if !outcome.Accepted() {
			report.add(outcome.Rejection)
			continue
		}

		key := outcome.Record.Key()
		if _, dup := seen[key]; dup {
			report.add(&Rejection{
				Line:    record.Line,
				Rule:    RuleDuplicado,
				Message: "exact duplicate of an earlier record",
			})
			continue
		}
		seen[key] = struct{}{}

		clean = append(clean, outcome.Record)
	}

	report.Accepted = len(clean)
	return clean, report
}

// Check runs the per-record checks (steps 1 to 6). Duplicate detection
// needs the whole pass and is done by CleanWithReport.
func Check(raw types.RawRecord) Outcome {
	reject := func(rule Rule, field, message string) Outcome {
		value, _ := raw.Get(field)
		return Outcome{Rejection: &Rejection{
			Line:    raw.Line,
			Rule:    rule,
			Field:   field,
			Value:   value,
			Message: message,
		}}
	}

	fechaRaw, _ := raw.Get(types.FieldFecha)
	fecha, ok := normalize.Date(fechaRaw)
	if !ok {
		return reject(RuleFecha, types.FieldFecha, "not a valid calendar date")
	}

	franjaRaw, _ := raw.Get(types.FieldFranja)
	franja, ok := types.ParseFranja(normalize.Capitalize(franjaRaw))
	if !ok {
		return reject(RuleFranja, types.FieldFranja, "must be one of: "+joinFranjas())
	}

	familiaRaw, _ := raw.Get(types.FieldFamilia)
	familia, ok := types.ParseFamilia(normalize.Capitalize(familiaRaw))
	if !ok {
		return reject(RuleFamilia, types.FieldFamilia, "must be one of: "+joinFamilias())
	}

	productoRaw, _ := raw.Get(types.FieldProducto)
	if productoRaw == "" {
		return reject(RuleProducto, types.FieldProducto, "required field is empty")
	}

	unidadesRaw, _ := raw.Get(types.FieldUnidades)
	unidades, ok := normalize.Number(unidadesRaw)
	if !ok || !unidades.IsPositive() {
		return reject(RuleCantidad, types.FieldUnidades, "must be a number greater than 0")
	}

	precioRaw, _ := raw.Get(types.FieldPrecioUnitario)
	precio, ok := normalize.Number(precioRaw)
	if !ok || !precio.IsPositive() {
		return reject(RuleCantidad, types.FieldPrecioUnitario, "must be a number greater than 0")
	}

	return Outcome{Record: types.CleanRecord{
		Fecha:          fecha,
		Franja:         franja,
		Familia:        familia,
		Producto:       normalize.NormalizeText(productoRaw),
		Unidades:       unidades,
		PrecioUnitario: precio,
		Importe:        unidades.Mul(precio),
	}}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func joinFranjas() string {
	names := make([]string, len(types.Franjas))
	for i, f := range types.Franjas {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func joinFamilias() string {
	names := make([]string, len(types.Familias))
	for i, f := range types.Familias {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// =============================================================================
// REPORT FORMATTING
// =============================================================================

// FormatReport renders a Report for display or logging.
func FormatReport(report *Report) string {
	if report.Rejected() == 0 {
		return fmt.Sprintf("All %d record(s) accepted.", report.Total)
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Accepted %d of %d record(s); %d rejected:\n",
		report.Accepted, report.Total, report.Rejected()))

	rules := make([]string, 0, len(report.ByRule))
	for rule := range report.ByRule {
		rules = append(rules, string(rule))
	}
	sort.Strings(rules)
	for _, rule := range rules {
		builder.WriteString(fmt.Sprintf("  %-10s %d\n", rule, report.ByRule[Rule(rule)]))
	}

	return builder.String()
}
