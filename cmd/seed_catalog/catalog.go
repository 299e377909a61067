package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// catalogo raíz del XML de catálogo:
//
//	<catalogo>
//	  <bodegas><bodega cod="B01" nombre="Principal" direccion="..."/></bodegas>
//	  <articulos><articulo cod="A001" nombre="Tornillo" precio="1200.50"/></articulos>
//	</catalogo>
type catalogo struct {
	Bodegas struct {
		Valores []bodega `xml:"bodega"`
	} `xml:"bodegas"`
	Articulos struct {
		Valores []articulo `xml:"articulo"`
	} `xml:"articulos"`
}

type bodega struct {
	Cod       string `xml:"cod,attr"`
	Nombre    string `xml:"nombre,attr"`
	Direccion string `xml:"direccion,attr"`
}

type articulo struct {
	Cod    string `xml:"cod,attr"`
	Nombre string `xml:"nombre,attr"`
	Precio string `xml:"precio,attr"`
}

type warehouseRow struct {
	code, name, address string
}

type itemRow struct {
	code, name string
	price      decimal.Decimal
}

// catalog bodegas y artículos normalizados, ordenados por código.
type catalog struct {
	warehouses []warehouseRow
	items      []itemRow
}

// parseCatalog decodifica el XML (UTF-8 o ISO-8859-1). Filas sin código o nombre se omiten;
// un código repetido conserva la última aparición.
func parseCatalog(r io.Reader) (*catalog, error) {
	var c catalogo
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") || strings.EqualFold(charset, "latin1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decodificar XML: %w", err)
	}

	whs := make(map[string]warehouseRow)
	for _, b := range c.Bodegas.Valores {
		code, name := strings.TrimSpace(b.Cod), strings.TrimSpace(b.Nombre)
		if code == "" || name == "" {
			continue
		}
		whs[code] = warehouseRow{code: code, name: name, address: strings.TrimSpace(b.Direccion)}
	}

	items := make(map[string]itemRow)
	for _, a := range c.Articulos.Valores {
		code, name := strings.TrimSpace(a.Cod), strings.TrimSpace(a.Nombre)
		if code == "" || name == "" {
			continue
		}
		price := decimal.Zero
		if p := strings.TrimSpace(a.Precio); p != "" {
			v, err := decimal.NewFromString(p)
			if err != nil {
				return nil, fmt.Errorf("artículo %s: precio %q inválido", code, p)
			}
			if v.IsNegative() {
				return nil, fmt.Errorf("artículo %s: precio negativo", code)
			}
			price = v.Round(2)
		}
		items[code] = itemRow{code: code, name: name, price: price}
	}

	out := &catalog{}
	for _, w := range whs {
		out.warehouses = append(out.warehouses, w)
	}
	sort.Slice(out.warehouses, func(i, j int) bool { return out.warehouses[i].code < out.warehouses[j].code })
	for _, it := range items {
		out.items = append(out.items, it)
	}
	sort.Slice(out.items, func(i, j int) bool { return out.items[i].code < out.items[j].code })
	return out, nil
}

// writeSQL escribe los upserts idempotentes de bodegas y artículos.
func writeSQL(w io.Writer, c *catalog) error {
	var b strings.Builder
	b.WriteString("-- Catálogo de bodegas y artículos\n")
	b.WriteString("-- Generado por cmd/seed_catalog\n\n")

	if len(c.warehouses) > 0 {
		b.WriteString("INSERT INTO warehouses (code, name, address) VALUES\n")
		for i, wh := range c.warehouses {
			fmt.Fprintf(&b, "  ('%s', '%s', %s)", escapeSQL(wh.code), escapeSQL(wh.name), nullableSQL(wh.address))
			b.WriteString(separator(i, len(c.warehouses)))
		}
		b.WriteString("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, address = EXCLUDED.address, updated_at = now();\n\n")
	}

	if len(c.items) > 0 {
		b.WriteString("INSERT INTO items (code, name, price) VALUES\n")
		for i, it := range c.items {
			fmt.Fprintf(&b, "  ('%s', '%s', %s)", escapeSQL(it.code), escapeSQL(it.name), it.price.StringFixed(2))
			b.WriteString(separator(i, len(c.items)))
		}
		b.WriteString("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price, updated_at = now();\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func separator(i, n int) string {
	if i < n-1 {
		return ",\n"
	}
	return "\n"
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func nullableSQL(s string) string {
	if s == "" {
		return "NULL"
	}
	return "'" + escapeSQL(s) + "'"
}
