// =============================================================================
// Ventas Ledger - Shared Types
// =============================================================================
//
// This package contains the record types shared by every stage of the
// ledger pipeline. Keeping them here avoids import cycles between:
//   - csvparser   (produces RawRecord)
//   - validation  (turns RawRecord into CleanRecord)
//   - aggregate   (reads CleanRecord)
//   - exporter    (serializes CleanRecord)
//
// =============================================================================

package types

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FIELD NAMES
// =============================================================================

// Ledger column names as they appear in the header row.
const (
	FieldFecha          = "fecha"
	FieldFranja         = "franja"
	FieldFamilia        = "familia"
	FieldProducto       = "producto"
	FieldUnidades       = "unidades"
	FieldPrecioUnitario = "precio_unitario"
	FieldImporte        = "importe"
)

// CleanFields is the fixed field order of a CleanRecord. It drives the
// export header, the export column order and the duplicate key.
var CleanFields = []string{
	FieldFecha,
	FieldFranja,
	FieldFamilia,
	FieldProducto,
	FieldUnidades,
	FieldPrecioUnitario,
	FieldImporte,
}

// =============================================================================
// ENUMERATIONS
// =============================================================================

// Franja is the meal slot a sale belongs to.
type Franja string

const (
	Desayuno Franja = "Desayuno"
	Comida   Franja = "Comida"
)

// Franjas lists every accepted Franja.
var Franjas = []Franja{Desayuno, Comida}

// ParseFranja matches an already-capitalized value against the accepted
// franjas. The comparison is exact.
func ParseFranja(s string) (Franja, bool) {
	for _, f := range Franjas {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Familia is the product family of a sale.
type Familia string

const (
	Bebida    Familia = "Bebida"
	Entrante  Familia = "Entrante"
	Principal Familia = "Principal"
	Postre    Familia = "Postre"
)

// Familias lists every accepted Familia.
var Familias = []Familia{Bebida, Entrante, Principal, Postre}

// ParseFamilia matches an already-capitalized value against the accepted
// families. The comparison is exact.
func ParseFamilia(s string) (Familia, bool) {
	for _, f := range Familias {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// =============================================================================
// RAW RECORD
// =============================================================================

// RawRecord is one data line of the input, keyed by header name.
// No type guarantees are made about the values.
type RawRecord struct {
	// Line is the 1-indexed line number in the source text.
	// The header is line 1, so the first data record is line 2.
	Line int

	// Headers is the header row, in input order.
	Headers []string

	// Fields maps header name to the trimmed value. Headers with no value
	// on a short line are absent from the map.
	Fields map[string]string
}

// Get returns the value stored under name and whether it was present.
func (r RawRecord) Get(name string) (string, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// Values returns the record's values in header order. Absent values are
// returned as empty strings.
func (r RawRecord) Values() []string {
	out := make([]string, len(r.Headers))
	for i, h := range r.Headers {
		out[i] = r.Fields[h]
	}
	return out
}

// =============================================================================
// CLEAN RECORD
// =============================================================================

// CleanRecord is a validated, normalized ledger line. Every field has
// passed its validation rule and Importe is always Unidades*PrecioUnitario.
type CleanRecord struct {
	Fecha          string          `json:"fecha"`
	Franja         Franja          `json:"franja"`
	Familia        Familia         `json:"familia"`
	Producto       string          `json:"producto"`
	Unidades       decimal.Decimal `json:"unidades"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Importe        decimal.Decimal `json:"importe"`
}

// Value returns the canonical string form of a single field.
// Unknown field names yield "".
func (c CleanRecord) Value(field string) string {
	switch field {
	case FieldFecha:
		return c.Fecha
	case FieldFranja:
		return string(c.Franja)
	case FieldFamilia:
		return string(c.Familia)
	case FieldProducto:
		return c.Producto
	case FieldUnidades:
		return c.Unidades.String()
	case FieldPrecioUnitario:
		return c.PrecioUnitario.String()
	case FieldImporte:
		return c.Importe.String()
	default:
		return ""
	}
}

// Values returns all fields in CleanFields order.
func (c CleanRecord) Values() []string {
	out := make([]string, len(CleanFields))
	for i, f := range CleanFields {
		out[i] = c.Value(f)
	}
	return out
}

// Key returns the duplicate-detection key: every field in CleanFields
// order, numbers in canonical decimal form. Values are quoted so that no
// field content can collide with the separator.
func (c CleanRecord) Key() string {
	values := c.Values()
	for i, v := range values {
		values[i] = strconv.Quote(v)
	}
	return strings.Join(values, ",")
}
