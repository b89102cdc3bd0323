package builder

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/pkg/letras"
)

var (
	tasaIVA   = decimal.RequireFromString("0.13")
	factorIVA = decimal.RequireFromString("1.13")
)

// num redondea a 2 decimales (mitad hacia arriba) y devuelve el float64
// que viaja en el JSON.
func num(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// suma agrega un campo numérico sobre los ítems del cuerpo.
func suma(items []map[string]any, campo string) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if f, ok := it[campo].(float64); ok {
			total = total.Add(decimal.NewFromFloat(f))
		}
	}
	return total
}

// ivaDeGravada calcula el IVA de una línea gravada. En la factura de
// consumidor final el precio incluye IVA (se extrae); en el resto el IVA
// se agrega sobre la base.
func ivaDeGravada(gravada decimal.Decimal, ivaIncluido bool) decimal.Decimal {
	if ivaIncluido {
		return gravada.Sub(gravada.Div(factorIVA)).Round(2)
	}
	return gravada.Mul(tasaIVA).Round(2)
}

// limpiarNIT deja solo los caracteres del NIT sin guiones ni espacios.
func limpiarNIT(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "-", ""), " ", "")
}

// soloDigitos filtra todo lo que no sea dígito.
func soloDigitos(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// rellenar antepone ceros hasta alcanzar n caracteres.
func rellenar(s string, n int) string {
	for len(s) < n {
		s = "0" + s
	}
	return s
}

func oDefecto(valor, defecto string) string {
	if strings.TrimSpace(valor) == "" {
		return defecto
	}
	return strings.TrimSpace(valor)
}

func truncar(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// codigoUbicacion normaliza departamento/municipio a 2 dígitos.
func codigoUbicacion(valor, defecto string) string {
	return rellenar(oDefecto(valor, defecto), 2)
}

// seccionEmisor construye el emisor estándar desde la empresa, con los
// campos V3 (codEstableMH, codEstable, codPuntoVentaMH, codPuntoVenta).
func seccionEmisor(e *entity.Empresa) map[string]any {
	codEstable, codPunto := codigosEstablecimiento(e)
	nombreComercial := oDefecto(e.NombreComercial, oDefecto(e.Nombre, "Empresa"))
	emisor := map[string]any{
		"nit":                 limpiarNIT(oDefecto(e.NIT, e.NRC)),
		"nrc":                 e.NRC,
		"nombre":              e.Nombre,
		"codActividad":        oDefecto(e.CodActividad, "62010"),
		"descActividad":       oDefecto(e.DescActividad, "Servicios"),
		"tipoEstablecimiento": "01",
		"direccion": map[string]any{
			"departamento": codigoUbicacion(e.Departamento, "06"),
			"municipio":    codigoUbicacion(e.Municipio, "14"),
			"complemento":  strings.TrimSpace(e.Direccion),
		},
		"codEstableMH":    codEstable,
		"codEstable":      codEstable,
		"codPuntoVentaMH": codPunto,
		"codPuntoVenta":   codPunto,
		"nombreComercial": nombreComercial,
	}
	if e.Telefono != "" {
		emisor["telefono"] = e.Telefono
	}
	if e.Correo != "" {
		emisor["correo"] = e.Correo
	}
	return emisor
}

// seccionExtension con los campos que MH exige presentes (pueden ser null).
func seccionExtension(v *entity.Venta) map[string]any {
	return map[string]any{
		"nombEntrega":   nil,
		"docuEntrega":   nil,
		"nombRecibe":    nil,
		"docuRecibe":    nil,
		"observaciones": nil,
		"placaVehiculo": nil,
	}
}

// seccionPagos arma la lista de pagos. Para operaciones al crédito MH exige
// plazo (CAT-017: "01" días, "02" meses, "03" años) y periodo entero.
func seccionPagos(v *entity.Venta, totalPagar decimal.Decimal) (pagos []map[string]any, condicion int) {
	condicion = v.CondicionOperacion
	if condicion == 0 {
		condicion = entity.CondicionContado
	}
	var plazo any
	var periodo any
	if condicion == entity.CondicionCredito {
		p := v.PlazoCredito
		if p != "01" && p != "02" && p != "03" {
			p = "03"
		}
		plazo = p
		n := v.PeriodoCredito
		if n <= 0 {
			n = 30
		}
		periodo = n
	}
	pagos = []map[string]any{{
		"codigo":     "01",
		"montoPago":  num(totalPagar),
		"referencia": nil,
		"periodo":    periodo,
		"plazo":      plazo,
	}}
	return pagos, condicion
}

// seccionApendice devuelve el apéndice del documento o el bloque por defecto.
func seccionApendice(ap []Apendice, etiquetaDefecto, valorDefecto string) []map[string]any {
	if len(ap) == 0 {
		return []map[string]any{{
			"campo":    "INFO",
			"etiqueta": etiquetaDefecto,
			"valor":    valorDefecto,
		}}
	}
	resultado := make([]map[string]any, 0, len(ap))
	for _, a := range ap {
		resultado = append(resultado, map[string]any{
			"campo":    a.Campo,
			"etiqueta": a.Etiqueta,
			"valor":    a.Valor,
		})
	}
	return resultado
}

// seccionParte arma un bloque de persona estándar (NIT/NRC/actividad y
// dirección) usado por retención, liquidación y donación.
func seccionParte(p Parte, conTipoEstablecimiento bool) map[string]any {
	nombre := oDefecto(p.Nombre, "Empresa")
	m := map[string]any{
		"nit":             oDefecto(limpiarNIT(p.NIT), "000000000"),
		"nrc":             oDefecto(p.NRC, "1"),
		"nombre":          nombre,
		"codActividad":    oDefecto(p.CodActividad, "62010"),
		"descActividad":   oDefecto(p.DescActividad, "Servicios"),
		"nombreComercial": oDefecto(p.NombreComercial, nombre),
		"direccion": map[string]any{
			"departamento": codigoUbicacion(p.Departamento, "06"),
			"municipio":    codigoUbicacion(p.Municipio, "14"),
			"complemento":  truncar(oDefecto(p.Direccion, "San Salvador"), 200),
		},
		"telefono": oDefecto(p.Telefono, "22222222"),
		"correo":   oDefecto(p.Correo, "info@empresa.com"),
	}
	if conTipoEstablecimiento {
		m["tipoEstablecimiento"] = "01"
	}
	return m
}

func totalLetras(d decimal.Decimal) string {
	return letras.Monto(d)
}
