// =============================================================================
// Ventas Ledger - XML Report Writer
// =============================================================================
//
// This module renders the summary of a pipeline run as an XML document for
// systems that ingest XML rather than CSV.
//
// XML STRUCTURE:
//
//   <ventas raw_count="5" clean_count="4">
//     <resumen>
//       <ventas_totales>12</ventas_totales>
//       <unidades_totales>5</unidades_totales>
//     </resumen>
//     <por_franja>
//       <grupo clave="Desayuno">12</grupo>
//     </por_franja>
//     <por_familia>...</por_familia>
//     <por_producto>...</por_producto>
//     <top_productos>
//       <producto n="1" clave="Café">8</producto>
//     </top_productos>
//     <registros>                          <!-- only with IncludeRecords -->
//       <registro n="1">
//         <fecha>2024-01-05</fecha>
//         ...
//       </registro>
//     </registros>
//   </ventas>
//
// Amounts are decimal strings without trailing zeros.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/ginjaninja78/ventas-ledger/internal/aggregate"
	"github.com/ginjaninja78/ventas-ledger/internal/pipeline"
	"github.com/ginjaninja78/ventas-ledger/internal/types"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// IncludeRecords adds every clean record under <registros>.
	// Default: false
	IncludeRecords bool
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
	}
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate creates the summary XML document of a run.
func Generate(out *pipeline.Output) ([]byte, error) {
	return GenerateWithOptions(out, DefaultGenerateOptions())
}

// GenerateWithOptions creates the summary XML document with custom options.
//
// PARAMETERS:
//   - out: The pipeline output to render.
//   - options: The generation options.
//
// RETURNS:
//   - The XML document as a byte slice.
//   - An error if out is nil or writing fails.
func GenerateWithOptions(out *pipeline.Output, options GenerateOptions) ([]byte, error) {
	if out == nil {
		return nil, fmt.Errorf("failed to generate XML: no pipeline output")
	}

	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString(xml.Header)
	}

	doc := buildDocument(out, options)
	if err := writeElement(&buffer, doc, options.Indent, 0); err != nil {
		return nil, fmt.Errorf("failed to write XML: %w", err)
	}

	return buffer.Bytes(), nil
}

// =============================================================================
// XML DOCUMENT BUILDING
// =============================================================================

// Element is a generic XML element: either a text value or children.
type Element struct {
	Name       string
	Attributes []xml.Attr
	Value      string
	Children   []Element
}

func buildDocument(out *pipeline.Output, options GenerateOptions) Element {
	doc := Element{
		Name: "ventas",
		Attributes: []xml.Attr{
			attr("raw_count", strconv.Itoa(out.RawCount)),
			attr("clean_count", strconv.Itoa(out.CleanCount)),
		},
	}

	doc.Children = append(doc.Children,
		Element{
			Name: "resumen",
			Children: []Element{
				text("ventas_totales", out.Summary.TotalRevenue.String()),
				text("unidades_totales", out.Summary.TotalUnits.String()),
			},
		},
		buildGroupsElement("por_franja", out.Summary.ByFranja),
		buildGroupsElement("por_familia", out.Summary.ByFamilia),
		buildGroupsElement("por_producto", out.Summary.ByProducto),
		buildTopElement(out.TopProductos),
	)

	if options.IncludeRecords {
		doc.Children = append(doc.Children, buildRecordsElement(out.Clean))
	}

	return doc
}

// buildGroupsElement renders one grouping in first-occurrence order.
func buildGroupsElement(name string, groups aggregate.Groups) Element {
	element := Element{Name: name}
	for _, g := range groups {
		child := text("grupo", g.Revenue.String())
		child.Attributes = []xml.Attr{attr("clave", g.Key)}
		element.Children = append(element.Children, child)
	}
	return element
}

// buildTopElement renders the ranked product list, numbered from 1.
func buildTopElement(top aggregate.Groups) Element {
	element := Element{Name: "top_productos"}
	for i, g := range top {
		child := text("producto", g.Revenue.String())
		child.Attributes = []xml.Attr{
			attr("n", strconv.Itoa(i+1)),
			attr("clave", g.Key),
		}
		element.Children = append(element.Children, child)
	}
	return element
}

func buildRecordsElement(records []types.CleanRecord) Element {
	element := Element{Name: "registros"}
	for i, record := range records {
		row := Element{
			Name:       "registro",
			Attributes: []xml.Attr{attr("n", strconv.Itoa(i+1))},
		}
		for _, field := range types.CleanFields {
			row.Children = append(row.Children, text(field, record.Value(field)))
		}
		element.Children = append(element.Children, row)
	}
	return element
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func text(name, value string) Element {
	return Element{Name: name, Value: value}
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// writeElement writes an element and its children with indentation.
// Elements with neither value nor children are self-closing.
func writeElement(buffer *bytes.Buffer, element Element, indent string, level int) error {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	buffer.WriteString("<")
	buffer.WriteString(element.Name)

	for _, a := range element.Attributes {
		buffer.WriteString(" ")
		buffer.WriteString(a.Name.Local)
		buffer.WriteString(`="`)
		if err := xml.EscapeText(buffer, []byte(a.Value)); err != nil {
			return err
		}
		buffer.WriteString(`"`)
	}

	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>\n")
		return nil
	}

	buffer.WriteString(">")

	if len(element.Children) == 0 {
		if err := xml.EscapeText(buffer, []byte(element.Value)); err != nil {
			return err
		}
	} else {
		buffer.WriteString("\n")
		for _, child := range element.Children {
			if err := writeElement(buffer, child, indent, level+1); err != nil {
				return err
			}
		}
		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	buffer.WriteString("</")
	buffer.WriteString(element.Name)
	buffer.WriteString(">\n")

	return nil
}
