package builder

import (
	"strings"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// Campos que MH exige presentes (null o lista vacía) en fe-ccf-v3.
var requeridosCCF = []string{
	"identificacion.tipoContingencia", "identificacion.motivoContin",
	"documentoRelacionado", "otrosDocumentos", "ventaTercero", "extension", "apendice",
	"extension.nombEntrega", "extension.docuEntrega", "extension.nombRecibe",
	"extension.docuRecibe", "extension.observaciones", "extension.placaVehiculo",
	"emisor.codEstableMH", "emisor.codEstable", "emisor.codPuntoVentaMH", "emisor.codPuntoVenta",
	"emisor.nombreComercial",
	"resumen.numPagoElectronico", "resumen.ivaRete1",
	"resumen.pagos.referencia", "resumen.pagos.periodo", "resumen.pagos.plazo",
	"cuerpoDocumento.numeroDocumento", "cuerpoDocumento.codTributo",
	// tributos:[] debe preservarse (MH exige [] en ítems exentos)
	"cuerpoDocumento.tributos",
}

// fe-fc-v1 agrega los campos del receptor de consumidor final.
var requeridosFC = append(append([]string{}, requeridosCCF...),
	"receptor.nrc", "receptor.codActividad", "receptor.descActividad",
	"receptor.tipoDocumento", "receptor.numDocumento", "receptor.direccion", "receptor.correo",
	"resumen.tributos",
)

// construirFC arma una Factura de Consumidor Final (fe-fc-v1): el precio
// unitario incluye IVA y cada línea lleva su desglose en ivaItem.
func construirFC(c *construccion, doc Documento) (map[string]any, error) {
	d, err := comoVenta(doc, entity.TipoDTEFactura)
	if err != nil {
		return nil, err
	}
	cuerpo := generarItems(d.Venta, true)
	return map[string]any{
		"identificacion":       c.ident,
		"documentoRelacionado": nil,
		"emisor":               seccionEmisor(c.empresa),
		"receptor":             receptorFC(d),
		"otrosDocumentos":      nil,
		"ventaTercero":         nil,
		"cuerpoDocumento":      cuerpo,
		"resumen":              resumenFC(d.Venta, cuerpo),
		"extension":            seccionExtension(d.Venta),
		"apendice":             nil,
	}, nil
}

// construirCCF arma un Comprobante de Crédito Fiscal (fe-ccf-v3): precio
// sin IVA, tributos ["20"] por línea gravada y desglose en el resumen.
func construirCCF(c *construccion, doc Documento) (map[string]any, error) {
	d, err := comoVenta(doc, entity.TipoDTEComprobante)
	if err != nil {
		return nil, err
	}
	receptor, err := receptorCCF(c.empresa, d)
	if err != nil {
		return nil, err
	}
	cuerpo := generarItems(d.Venta, false)
	return map[string]any{
		"identificacion":       c.ident,
		"documentoRelacionado": nil,
		"emisor":               seccionEmisor(c.empresa),
		"receptor":             receptor,
		"otrosDocumentos":      nil,
		"ventaTercero":         nil,
		"cuerpoDocumento":      cuerpo,
		"resumen":              resumenCCF(d.Venta, cuerpo),
		"extension":            seccionExtension(d.Venta),
		"apendice":             nil,
	}, nil
}

func comoVenta(doc Documento, tipo string) (*VentaDTE, error) {
	d, ok := doc.(*VentaDTE)
	if !ok || d.Venta == nil {
		return nil, &domain.ErrorEsquema{Restriccion: "el tipo " + tipo + " requiere una venta"}
	}
	return d, nil
}

// receptorFC: consumidor final. Sin NRC, sin nombreComercial; DUI de 9
// dígitos o NIT de 14, null cuando el cliente no tiene documento.
func receptorFC(d *VentaDTE) map[string]any {
	v, cl := d.Venta, d.Cliente

	if cl == nil {
		var tipoDoc, numDoc any
		if doc := soloDigitos(v.DocumentoReceptor); doc != "" {
			tipo := v.TipoDocReceptor
			if tipo != entity.TipoDocDUI {
				tipo = entity.TipoDocNIT
			}
			tipoDoc = tipo
			if tipo == entity.TipoDocDUI {
				numDoc = rellenar(doc, 9)
			} else {
				numDoc = rellenar(doc, 14)
			}
		}
		return map[string]any{
			"tipoDocumento": tipoDoc,
			"numDocumento":  numDoc,
			"nombre":        oDefecto(v.NombreReceptor, "Consumidor Final"),
			"nrc":           nil,
			"codActividad":  nil,
			"descActividad": nil,
			"direccion": map[string]any{
				"departamento": "06",
				"municipio":    "14",
				"complemento":  oDefecto(v.DireccionReceptor, "San Salvador"),
			},
			"telefono": "22222222",
			"correo":   valorONulo(v.CorreoReceptor),
		}
	}

	receptor := map[string]any{
		"nombre":        oDefecto(v.NombreReceptor, oDefecto(cl.Nombre, "Consumidor Final")),
		"nrc":           nil,
		"codActividad":  nil,
		"descActividad": nil,
		"telefono":      oDefecto(cl.Telefono, "22222222"),
		"correo":        valorONulo(cl.Correo),
	}
	switch {
	case strings.TrimSpace(cl.NIT) != "":
		receptor["tipoDocumento"] = entity.TipoDocNIT
		// NIT: exactamente 14 dígitos
		receptor["numDocumento"] = rellenar(limpiarNIT(cl.NIT), 14)
	case strings.TrimSpace(cl.DUI) != "":
		receptor["tipoDocumento"] = entity.TipoDocDUI
		// DUI: exactamente 9 dígitos (MH rechaza DUI de 14)
		receptor["numDocumento"] = rellenar(limpiarNIT(cl.DUI), 9)
	default:
		receptor["tipoDocumento"] = nil
		receptor["numDocumento"] = nil
	}
	if strings.TrimSpace(cl.Direccion) != "" {
		receptor["direccion"] = map[string]any{
			"departamento": codigoUbicacion(cl.Departamento, "06"),
			"municipio":    codigoUbicacion(cl.Municipio, "14"),
			"complemento":  cl.Direccion,
		}
	} else {
		receptor["direccion"] = nil
	}
	return receptor
}

// receptorCCF: contribuyente con NRC y actividad económica obligatorios.
// En el ambiente de pruebas se admite el NRC genérico de MH.
func receptorCCF(empresa *entity.Empresa, d *VentaDTE) (map[string]any, error) {
	v, cl := d.Venta, d.Cliente

	nrc := strings.TrimSpace(v.NRCReceptor)
	if nrc == "" && cl != nil {
		nrc = strings.TrimSpace(cl.NRC)
	}
	if nrc == "" {
		if empresa.Ambiente == entity.AmbientePruebas {
			nrc = "0000000"
		} else {
			return nil, &domain.ErrorEsquema{
				Restriccion: "el crédito fiscal requiere un receptor contribuyente con NRC",
			}
		}
	}

	var nit, nombre, nombreComercial, codAct, descAct, direccion, depto, muni, telefono, correo string
	if cl != nil {
		nit = limpiarNIT(oDefecto(cl.NIT, cl.NRC))
		nombre = oDefecto(v.NombreReceptor, cl.Nombre)
		nombreComercial = oDefecto(cl.Nombre, nombre)
		codAct = oDefecto(cl.CodActividad, "10005")
		descAct = oDefecto(cl.DescActividad, oDefecto(cl.Giro, "Otros"))
		direccion = oDefecto(cl.Direccion, "San Miguel")
		depto = cl.Departamento
		muni = cl.Municipio
		telefono = oDefecto(cl.Telefono, "22222222")
		correo = cl.Correo
	} else {
		nit = limpiarNIT(v.DocumentoReceptor)
		nombre = oDefecto(v.NombreReceptor, "Contribuyente")
		nombreComercial = nombre
		codAct = "10005"
		descAct = "Otros"
		direccion = oDefecto(v.DireccionReceptor, "San Miguel")
		telefono = "22222222"
		correo = v.CorreoReceptor
	}

	receptor := map[string]any{
		"nit":             oDefecto(nit, "00000000000000"),
		"nrc":             nrc,
		"nombre":          nombre,
		"nombreComercial": nombreComercial,
		"codActividad":    codAct,
		"descActividad":   descAct,
		"direccion": map[string]any{
			"departamento": codigoUbicacion(depto, "06"),
			"municipio":    codigoUbicacion(muni, "14"),
			"complemento":  direccion,
		},
		"telefono": telefono,
	}
	if correo != "" {
		receptor["correo"] = correo
	}
	return receptor, nil
}

// resumenFC: totalIva (suma de ivaItem), sin ivaPerci1, tributos null.
func resumenFC(v *entity.Venta, cuerpo []map[string]any) map[string]any {
	totalGravado := suma(cuerpo, "ventaGravada")
	totalExento := suma(cuerpo, "ventaExenta")
	totalNoSujeto := suma(cuerpo, "ventaNoSuj")
	totalDescu := suma(cuerpo, "montoDescu")
	totalIVA := suma(cuerpo, "ivaItem")

	subtotalVentas := totalGravado.Add(totalExento).Add(totalNoSujeto).Round(2)
	montoTotal := subtotalVentas
	totalPagar := montoTotal.Sub(v.IVARetenido.Round(2)).Round(2)

	pagos, condicion := seccionPagos(v, totalPagar)
	return map[string]any{
		"totalNoSuj":           num(totalNoSujeto),
		"totalExenta":          num(totalExento),
		"totalGravada":         num(totalGravado),
		"subTotalVentas":       num(subtotalVentas),
		"descuNoSuj":           0.00,
		"descuExenta":          0.00,
		"descuGravada":         num(totalDescu),
		"porcentajeDescuento":  0.00,
		"totalDescu":           num(totalDescu),
		"tributos":             nil,
		"subTotal":             num(subtotalVentas.Sub(totalDescu)),
		"reteRenta":            num(v.ReteRenta),
		"ivaRete1":             num(v.IVARetenido),
		"montoTotalOperacion":  num(montoTotal),
		"totalNoGravado":       0.00,
		"totalIva":             num(totalIVA),
		"saldoFavor":           0.00,
		"totalPagar":           num(totalPagar),
		"totalLetras":          totalLetras(totalPagar),
		"condicionOperacion":   condicion,
		"pagos":                pagos,
		"numPagoElectronico":   nil,
	}
}

// resumenCCF: ivaPerci1, desglose del IVA en tributos, sin totalIva.
func resumenCCF(v *entity.Venta, cuerpo []map[string]any) map[string]any {
	totalGravado := suma(cuerpo, "ventaGravada")
	totalExento := suma(cuerpo, "ventaExenta")
	totalNoSujeto := suma(cuerpo, "ventaNoSuj")
	totalDescu := suma(cuerpo, "montoDescu")
	totalIVA := totalGravado.Mul(tasaIVA).Round(2)

	subtotalVentas := totalGravado.Add(totalExento).Add(totalNoSujeto).Round(2)
	subTotal := subtotalVentas.Sub(totalDescu).Round(2)
	montoTotal := subTotal.Add(totalIVA).Round(2)
	totalPagar := montoTotal.Sub(v.IVARetenido.Round(2)).Round(2)

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

	pagos, condicion := seccionPagos(v, totalPagar)
	return map[string]any{
		"totalNoSuj":          num(totalNoSujeto),
		"totalExenta":         num(totalExento),
		"totalGravada":        num(totalGravado),
		"subTotalVentas":      num(subtotalVentas),
		"descuNoSuj":          0.00,
		"descuExenta":         0.00,
		"descuGravada":        num(totalDescu),
		"porcentajeDescuento": 0.00,
		"totalDescu":          num(totalDescu),
		"tributos":            tributos,
		"subTotal":            num(subTotal),
		"reteRenta":           num(v.ReteRenta),
		"ivaPerci1":           0.0,
		"ivaRete1":            num(v.IVARetenido),
		"montoTotalOperacion": num(montoTotal),
		"totalNoGravado":      0.00,
		"saldoFavor":          0.00,
		"totalPagar":          num(totalPagar),
		"totalLetras":         totalLetras(totalPagar),
		"condicionOperacion":  condicion,
		"pagos":               pagos,
		"numPagoElectronico":  nil,
	}
}

func valorONulo(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
