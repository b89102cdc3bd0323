package builder

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// generarItems arma el cuerpoDocumento de los tipos basados en Venta.
// ivaIncluido=true para la factura de consumidor final (precio con IVA,
// ivaItem por línea); false para CCF/NC/ND (IVA sobre la base, tributos
// ["20"] en líneas gravadas y [] en exentas).
func generarItems(v *entity.Venta, ivaIncluido bool) []map[string]any {
	items := make([]map[string]any, 0, len(v.Detalles))
	for _, d := range v.Detalles {
		precio := d.PrecioUnitario.Round(2)
		cantidad := d.Cantidad.Round(2)
		descuento := d.MontoDescuento.Round(2)
		montoLinea := precio.Mul(cantidad).Round(2).Sub(descuento)

		gravada, exenta, noSujeta := decimal.Zero, decimal.Zero, decimal.Zero
		switch {
		case d.VentaGravada.IsPositive():
			gravada = montoLinea.Round(2)
		case d.VentaExenta.IsPositive():
			exenta = montoLinea.Round(2)
		case d.VentaNoSujeta.IsPositive():
			noSujeta = montoLinea.Round(2)
		default:
			gravada = montoLinea.Round(2)
		}

		item := map[string]any{
			"numItem":         d.NumeroItem,
			"tipoItem":        1,
			"numeroDocumento": nil,
			"codigo":          oDefecto(d.Codigo, "LIBRE"),
			"codTributo":      nil,
			"descripcion":     oDefecto(d.Descripcion, "Item"),
			"cantidad":        num(cantidad),
			"uniMedida":       59,
			"precioUni":       num(precio),
			"montoDescu":      num(descuento),
			"ventaNoSuj":      num(noSujeta),
			"ventaExenta":     num(exenta),
			"ventaGravada":    num(gravada),
			"psv":             0.00,
			"noGravado":       0.00,
		}
		aplicarIVAItem(item, gravada, ivaIncluido)
		items = append(items, item)
	}

	if len(items) == 0 {
		items = itemsDesdeTotales(v, ivaIncluido)
	}
	if len(items) == 0 {
		items = append(items, itemDefault(v, ivaIncluido))
	}
	return items
}

func aplicarIVAItem(item map[string]any, gravada decimal.Decimal, ivaIncluido bool) {
	esGravado := gravada.IsPositive()
	if ivaIncluido {
		item["tributos"] = nil
		if esGravado {
			item["ivaItem"] = num(ivaDeGravada(gravada, true))
		} else {
			item["ivaItem"] = 0.00
		}
		return
	}
	if esGravado {
		item["tributos"] = []string{"20"}
	} else {
		item["tributos"] = []string{}
	}
}

// itemsDesdeTotales es el fallback para ventas sin detalle: una línea
// sintética por cada categoría con monto.
func itemsDesdeTotales(v *entity.Venta, ivaIncluido bool) []map[string]any {
	var items []map[string]any
	numItem := 1

	if v.VentaGravada.IsPositive() {
		monto := v.VentaGravada.Round(2)
		item := itemSintetico(numItem, "PROD001", "Venta gravada", monto)
		item["ventaGravada"] = num(monto)
		if ivaIncluido {
			item["tributos"] = nil
			item["ivaItem"] = num(ivaDeGravada(monto, true))
		} else if v.DebitoFiscal.IsPositive() {
			item["tributos"] = []string{"20"}
		} else {
			item["tributos"] = []string{}
		}
		items = append(items, item)
		numItem++
	}

	if v.VentaExenta.IsPositive() {
		monto := v.VentaExenta.Round(2)
		item := itemSintetico(numItem, "PROD002", "Venta exenta", monto)
		item["ventaExenta"] = num(monto)
		if ivaIncluido {
			item["tributos"] = nil
			item["ivaItem"] = 0.00
		} else {
			item["tributos"] = []string{}
		}
		items = append(items, item)
		numItem++
	}

	if v.VentaNoSujeta.IsPositive() {
		monto := v.VentaNoSujeta.Round(2)
		item := itemSintetico(numItem, "PROD003", "Venta no sujeta", monto)
		item["ventaNoSuj"] = num(monto)
		if ivaIncluido {
			item["tributos"] = nil
			item["ivaItem"] = 0.00
		} else {
			item["tributos"] = []string{}
		}
		items = append(items, item)
	}
	return items
}

func itemDefault(v *entity.Venta, ivaIncluido bool) map[string]any {
	monto := v.VentaGravada.Round(2)
	item := itemSintetico(1, "PROD001", "Venta", monto)
	item["ventaGravada"] = num(monto)
	if ivaIncluido {
		item["tributos"] = nil
		item["ivaItem"] = num(ivaDeGravada(monto, true))
	} else if v.DebitoFiscal.IsPositive() {
		item["tributos"] = []string{"20"}
	} else {
		item["tributos"] = []string{}
	}
	return item
}

func itemSintetico(numItem int, codigo, descripcion string, precio decimal.Decimal) map[string]any {
	return map[string]any{
		"numItem":         numItem,
		"tipoItem":        1,
		"cantidad":        1.0,
		"codigo":          codigo,
		"codTributo":      nil,
		"uniMedida":       59,
		"descripcion":     descripcion,
		"precioUni":       num(precio),
		"montoDescu":      0.00,
		"ventaNoSuj":      0.00,
		"ventaExenta":     0.00,
		"ventaGravada":    0.00,
		"psv":             0.00,
		"noGravado":       0.00,
		"numeroDocumento": nil,
	}
}
