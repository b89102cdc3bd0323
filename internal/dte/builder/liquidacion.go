package builder

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// construirLiquidacion arma un Comprobante de Liquidación (fe-cl-v1): la
// empresa liquida al receptor las ventas que hizo por su cuenta.
func construirLiquidacion(c *construccion, doc Documento) (map[string]any, error) {
	d, ok := doc.(*Liquidacion)
	if !ok {
		return nil, &domain.ErrorEsquema{Restriccion: "el comprobante de liquidación requiere el receptor y sus documentos"}
	}
	if len(d.Items) == 0 {
		return nil, &domain.ErrorEsquema{Restriccion: "el comprobante de liquidación requiere al menos un documento"}
	}

	cuerpo := make([]map[string]any, 0, len(d.Items))
	totalNoSujeto := decimal.Zero
	totalExento := decimal.Zero
	totalGravado := decimal.Zero
	totalExportacion := decimal.Zero
	totalIVA := decimal.Zero
	for i, item := range d.Items {
		gravada := item.VentaGravada.Round(2)
		iva := item.IVAItem.Round(2)
		if iva.IsZero() && gravada.IsPositive() {
			iva = gravada.Mul(tasaIVA).Round(2)
		}
		totalNoSujeto = totalNoSujeto.Add(item.VentaNoSujeta.Round(2))
		totalExento = totalExento.Add(item.VentaExenta.Round(2))
		totalGravado = totalGravado.Add(gravada)
		totalExportacion = totalExportacion.Add(item.Exportaciones.Round(2))
		totalIVA = totalIVA.Add(iva)

		tipoGen := item.TipoGeneracion
		if tipoGen != 1 && tipoGen != 2 {
			tipoGen = 2
		}
		var tributos []string
		if iva.IsPositive() {
			tributos = []string{"20"}
		} else {
			tributos = []string{}
		}
		cuerpo = append(cuerpo, map[string]any{
			"numItem":         i + 1,
			"tipoDte":         oDefecto(item.TipoDTEOrigen, entity.TipoDTEComprobante),
			"tipoGeneracion":  tipoGen,
			"numeroDocumento": item.NumeroDocumento,
			"fechaGeneracion": item.FechaGeneracion.Format("2006-01-02"),
			"ventaNoSuj":      num(item.VentaNoSujeta),
			"ventaExenta":     num(item.VentaExenta),
			"ventaGravada":    num(gravada),
			"exportaciones":   num(item.Exportaciones),
			"tributos":        tributos,
			"ivaItem":         num(iva),
			"obsItem":         truncar(item.Observacion, 3000),
		})
	}

	subTotalVentas := totalNoSujeto.Add(totalExento).Add(totalGravado).Add(totalExportacion).Round(2)
	total := subTotalVentas.Add(totalIVA).Round(2)

	var tributos []map[string]any
	if totalIVA.IsPositive() {
		tributos = []map[string]any{{
			"codigo":      "20",
			"descripcion": "IVA 13%",
			"valor":       num(totalIVA),
		}}
	} else {
		tributos = []map[string]any{}
	}

	return map[string]any{
		"identificacion":  c.ident,
		"emisor":          seccionEmisor(c.empresa),
		"receptor":        seccionParte(d.Receptor, false),
		"cuerpoDocumento": cuerpo,
		"resumen": map[string]any{
			"totalNoSuj":          num(totalNoSujeto),
			"totalExenta":         num(totalExento),
			"totalGravada":        num(totalGravado),
			"totalExportacion":    num(totalExportacion),
			"subTotalVentas":      num(subTotalVentas),
			"tributos":            tributos,
			"montoTotalOperacion": num(subTotalVentas),
			"ivaPerci":            num(totalIVA),
			"total":               num(total),
			"totalLetras":         totalLetras(total),
			"condicionOperacion":  entity.CondicionContado,
		},
		"extension": extensionEntrega(Entrega{}, ""),
		"apendice":  seccionApendice(d.Apendice, "Información", "Comprobante de Liquidación"),
	}, nil
}
