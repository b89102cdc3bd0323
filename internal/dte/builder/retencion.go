package builder

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/pkg/letras"
)

// construirRetencion arma un Comprobante de Retención (fe-cr-v1). El emisor
// es el agente retenedor y el receptor es la empresa retenida; cada línea
// referencia el documento sobre el que se retuvo el IVA.
func construirRetencion(c *construccion, doc Documento) (map[string]any, error) {
	d, ok := doc.(*Retencion)
	if !ok {
		return nil, &domain.ErrorEsquema{Restriccion: "el comprobante de retención requiere el agente y sus documentos"}
	}
	if len(d.Items) == 0 {
		return nil, &domain.ErrorEsquema{Restriccion: "el comprobante de retención requiere al menos un documento retenido"}
	}

	codEstable, codPunto := codigosEstablecimiento(c.empresa)
	emisor := seccionParte(d.Agente, true)
	emisor["codigoMH"] = codEstable
	emisor["codigo"] = codEstable
	emisor["puntoVentaMH"] = codPunto
	emisor["puntoVenta"] = codPunto

	cuerpo := make([]map[string]any, 0, len(d.Items))
	totalSujeto := decimal.Zero
	totalRetenido := decimal.Zero
	for i, item := range d.Items {
		monto := item.MontoSujeto.Round(2)
		retenido := item.IVARetenido.Round(2)
		if retenido.IsZero() {
			// retención del 1% sobre el monto sujeto (CAT-015, código 22)
			retenido = monto.Mul(decimal.RequireFromString("0.01")).Round(2)
		}
		totalSujeto = totalSujeto.Add(monto)
		totalRetenido = totalRetenido.Add(retenido)

		tipoDoc := item.TipoDoc
		if tipoDoc != 1 && tipoDoc != 2 {
			tipoDoc = 2
		}
		cuerpo = append(cuerpo, map[string]any{
			"numItem":           i + 1,
			"tipoDte":           oDefecto(item.TipoDTEOrigen, entity.TipoDTEComprobante),
			"tipoDoc":           tipoDoc,
			"numDocumento":      item.NumDocumento,
			"fechaEmision":      item.FechaEmision.Format("2006-01-02"),
			"montoSujetoGrav":   num(monto),
			"codigoRetencionMH": oDefecto(item.CodigoRetencion, "22"),
			"ivaRetenido":       num(retenido),
			"descripcion":       truncar(oDefecto(item.Descripcion, "Retención de IVA"), 1000),
		})
	}

	return map[string]any{
		"identificacion": c.ident,
		"emisor":         emisor,
		"receptor":       receptorEmpresa(c.empresa),
		"cuerpoDocumento": cuerpo,
		"resumen": map[string]any{
			"totalSujetoRetencion":   num(totalSujeto),
			"totalIVAretenido":       num(totalRetenido),
			"totalIVAretenidoLetras": letras.Monto(totalRetenido),
		},
		"extension": extensionEntrega(d.Entrega, d.Observaciones),
		"apendice":  seccionApendice(d.Apendice, "Información", "Comprobante de Retención"),
	}, nil
}

// receptorEmpresa: la propia empresa como receptor del comprobante.
func receptorEmpresa(e *entity.Empresa) map[string]any {
	nombre := oDefecto(e.Nombre, "Empresa")
	return map[string]any{
		"tipoDocumento":   entity.TipoDocNIT,
		"numDocumento":    limpiarNIT(oDefecto(e.NIT, e.NRC)),
		"nrc":             e.NRC,
		"nombre":          nombre,
		"codActividad":    oDefecto(e.CodActividad, "62010"),
		"descActividad":   oDefecto(e.DescActividad, "Servicios"),
		"nombreComercial": oDefecto(e.NombreComercial, nombre),
		"direccion": map[string]any{
			"departamento": codigoUbicacion(e.Departamento, "06"),
			"municipio":    codigoUbicacion(e.Municipio, "14"),
			"complemento":  oDefecto(e.Direccion, "San Salvador"),
		},
		"telefono": oDefecto(e.Telefono, "22222222"),
		"correo":   oDefecto(e.Correo, "info@empresa.com"),
	}
}

func extensionEntrega(en Entrega, observaciones string) map[string]any {
	return map[string]any{
		"nombEntrega":   oDefecto(en.NombEntrega, "Sistema"),
		"docuEntrega":   oDefecto(en.DocuEntrega, "00000000"),
		"nombRecibe":    valorONulo(en.NombRecibe),
		"docuRecibe":    valorONulo(en.DocuRecibe),
		"observaciones": valorONulo(observaciones),
	}
}
