package builder

import (
	"strings"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// fe-nc-v3: el emisor va sin códigos de establecimiento y el resumen sin
// pagos ni totalPagar (la nota ajusta un documento, no cobra).
var requeridosNC = []string{
	"identificacion.tipoContingencia", "identificacion.motivoContin",
	"documentoRelacionado", "ventaTercero", "extension", "apendice",
	"extension.nombEntrega", "extension.docuEntrega", "extension.nombRecibe",
	"extension.docuRecibe", "extension.observaciones",
	"emisor.nombreComercial",
	"cuerpoDocumento.numeroDocumento", "cuerpoDocumento.codTributo",
	"cuerpoDocumento.tributos",
}

// fe-nd-v3 además exige numPagoElectronico presente en el resumen.
var requeridosND = append(append([]string{}, requeridosNC...),
	"resumen.numPagoElectronico",
)

func construirNC(c *construccion, doc Documento) (map[string]any, error) {
	return construirNota(c, doc, entity.TipoDTENotaCredito)
}

func construirND(c *construccion, doc Documento) (map[string]any, error) {
	return construirNota(c, doc, entity.TipoDTENotaDebito)
}

// construirNota arma una nota de crédito o débito (fe-nc-v3 / fe-nd-v3).
// Comparte receptor y cuerpo con el CCF pero referencia obligatoriamente el
// documento que ajusta en documentoRelacionado y en cada línea.
func construirNota(c *construccion, doc Documento, tipo string) (map[string]any, error) {
	d, err := comoVenta(doc, tipo)
	if err != nil {
		return nil, err
	}
	if d.Relacionada == nil {
		return nil, &domain.ErrorEsquema{
			Restriccion: "la nota requiere el documento relacionado que ajusta",
		}
	}
	receptor, err := receptorCCF(c.empresa, d)
	if err != nil {
		return nil, err
	}

	cuerpo := generarItems(d.Venta, false)
	refItem := truncar(oDefecto(d.Relacionada.NumeroControl, d.Relacionada.CodigoGeneracion), 50)
	for _, item := range cuerpo {
		item["numeroDocumento"] = refItem
		item["tipoItem"] = 1
		delete(item, "noGravado")
		delete(item, "psv")
	}

	emisor := seccionEmisor(c.empresa)
	delete(emisor, "codEstableMH")
	delete(emisor, "codEstable")
	delete(emisor, "codPuntoVentaMH")
	delete(emisor, "codPuntoVenta")

	extension := seccionExtension(d.Venta)
	delete(extension, "placaVehiculo")

	return map[string]any{
		"identificacion":       c.ident,
		"documentoRelacionado": []map[string]any{documentoRelacionado(d.Relacionada)},
		"emisor":               emisor,
		"receptor":             receptor,
		"ventaTercero":         nil,
		"cuerpoDocumento":      cuerpo,
		"resumen":              resumenNota(d.Venta, cuerpo),
		"extension":            extension,
		"apendice":             nil,
	}, nil
}

// documentoRelacionado referencia el DTE ajustado: por código de generación
// cuando existe (tipoGeneracion 2, electrónico) o por número de control.
func documentoRelacionado(rel *entity.Venta) map[string]any {
	tipoDoc := rel.TipoDTE
	if tipoDoc == "" {
		tipoDoc = entity.TipoDTEComprobante
	}
	var numero string
	switch {
	case len(rel.CodigoGeneracion) >= 32:
		numero = strings.ToUpper(rel.CodigoGeneracion)
	case len(rel.NumeroControl) == 31:
		numero = rel.NumeroControl
	default:
		numero = strings.ToUpper(oDefecto(rel.CodigoGeneracion, rel.NumeroControl))
	}
	return map[string]any{
		"tipoDocumento":  tipoDoc,
		"tipoGeneracion": 2,
		"numeroDocumento": numero,
		"fechaEmision":   rel.FechaEmision.Format("2006-01-02"),
	}
}

// resumenNota: el desglose del CCF sin pagos, totalPagar ni saldoFavor.
// numPagoElectronico solo sobrevive a la poda en la nota de débito.
func resumenNota(v *entity.Venta, cuerpo []map[string]any) map[string]any {
	totalGravado := suma(cuerpo, "ventaGravada")
	totalExento := suma(cuerpo, "ventaExenta")
	totalNoSujeto := suma(cuerpo, "ventaNoSuj")
	totalDescu := suma(cuerpo, "montoDescu")
	totalIVA := totalGravado.Mul(tasaIVA).Round(2)

	subtotalVentas := totalGravado.Add(totalExento).Add(totalNoSujeto).Round(2)
	subTotal := subtotalVentas.Sub(totalDescu).Round(2)
	montoTotal := subTotal.Add(totalIVA).Round(2)

	var tributos []map[string]any
	if totalIVA.IsPositive() {
		tributos = []map[string]any{{
			"codigo":      "20",
			"descripcion": "Impuesto al Valor Agregado 13%",
			"valor":       num(totalIVA),
		}}
	} else {
		tributos = []map[string]any{}
	}

	condicion := v.CondicionOperacion
	if condicion == 0 {
		condicion = entity.CondicionContado
	}
	return map[string]any{
		"totalNoSuj":          num(totalNoSujeto),
		"totalExenta":         num(totalExento),
		"totalGravada":        num(totalGravado),
		"subTotalVentas":      num(subtotalVentas),
		"descuNoSuj":          0.00,
		"descuExenta":         0.00,
		"descuGravada":        num(totalDescu),
		"totalDescu":          num(totalDescu),
		"tributos":            tributos,
		"subTotal":            num(subTotal),
		"ivaPerci1":           0.0,
		"ivaRete1":            num(v.IVARetenido),
		"reteRenta":           num(v.ReteRenta),
		"montoTotalOperacion": num(montoTotal),
		"totalLetras":         totalLetras(montoTotal),
		"condicionOperacion":  condicion,
		"numPagoElectronico":  nil,
	}
}
