package builder

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// construirDonacion arma un Comprobante de Donación (fe-cd-v1). El emisor es
// el donatario (quien recibe y extiende el comprobante) y el documento lleva
// al donante en lugar de receptor.
func construirDonacion(c *construccion, doc Documento) (map[string]any, error) {
	d, ok := doc.(*Donacion)
	if !ok {
		return nil, &domain.ErrorEsquema{Restriccion: "el comprobante de donación requiere donante y donatario"}
	}
	if len(d.Items) == 0 {
		return nil, &domain.ErrorEsquema{Restriccion: "el comprobante de donación requiere al menos una línea"}
	}

	codEstable, codPunto := codigosEstablecimiento(c.empresa)
	donatario := seccionParte(d.Donatario, true)
	donatario["codEstableMH"] = codEstable
	donatario["codEstable"] = codEstable
	donatario["codPuntoVentaMH"] = codPunto
	donatario["codPuntoVenta"] = codPunto

	cuerpo := make([]map[string]any, 0, len(d.Items))
	valorTotal := decimal.Zero
	for i, item := range d.Items {
		cantidad := item.Cantidad.Round(2)
		if !cantidad.IsPositive() {
			cantidad = decimal.NewFromInt(1)
		}
		valorUni := item.ValorUnitario.Round(2)
		valor := item.Valor.Round(2)
		if valor.IsZero() {
			valor = valorUni.Mul(cantidad).Round(2)
		}
		valorTotal = valorTotal.Add(valor)

		tipoDonacion := item.TipoDonacion
		if tipoDonacion < 1 || tipoDonacion > 3 {
			tipoDonacion = 1
		}
		// bienes y efectivo van con unidad de medida 99 (otra)
		uniMedida := item.UniMedida
		if tipoDonacion == 1 || tipoDonacion == 3 || uniMedida == 0 {
			uniMedida = 99
		}
		cuerpo = append(cuerpo, map[string]any{
			"numItem":      i + 1,
			"tipoDonacion": tipoDonacion,
			"cantidad":     num(cantidad),
			"codigo":       truncar(oDefecto(item.Codigo, "DON001"), 25),
			"uniMedida":    uniMedida,
			"descripcion":  truncar(oDefecto(item.Descripcion, "Donación"), 1000),
			"depreciacion": num(item.Depreciacion),
			"valorUni":     num(valorUni),
			"valor":        num(valor),
		})
	}

	return map[string]any{
		"identificacion":  c.ident,
		"donatario":       donatario,
		"donante":         seccionDonante(d),
		"otrosDocumentos": otrosDocumentosDonacion(d.OtrosDocumentos),
		"cuerpoDocumento": cuerpo,
		"resumen": map[string]any{
			"valorTotal":  num(valorTotal),
			"totalLetras": totalLetras(valorTotal),
			"pagos": []map[string]any{{
				"codigo":     "01",
				"montoPago":  num(valorTotal),
				"referencia": nil,
			}},
		},
		"apendice": seccionApendice(d.Apendice, "Información", "Comprobante de Donación"),
	}, nil
}

func seccionDonante(d *Donacion) map[string]any {
	p := d.Donante
	codDomiciliado := d.CodDomiciliado
	if codDomiciliado == 0 {
		codDomiciliado = 1
	}
	numDocumento := limpiarNIT(p.NIT)
	if numDocumento == "" {
		numDocumento = "000000000"
	}
	return map[string]any{
		"tipoDocumento":  entity.TipoDocNIT,
		"numDocumento":   numDocumento,
		"nombre":         oDefecto(p.Nombre, "Donante"),
		"codActividad":   oDefecto(p.CodActividad, "62010"),
		"descActividad":  oDefecto(p.DescActividad, "Servicios"),
		"codDomiciliado": codDomiciliado,
		"codPais":        oDefecto(d.CodPais, "9905"),
		"direccion": map[string]any{
			"departamento": codigoUbicacion(p.Departamento, "06"),
			"municipio":    codigoUbicacion(p.Municipio, "14"),
			"complemento":  truncar(oDefecto(p.Direccion, "San Salvador"), 200),
		},
		"telefono": oDefecto(p.Telefono, "22222222"),
		"correo":   oDefecto(p.Correo, "info@empresa.com"),
	}
}

// otrosDocumentosDonacion: el esquema exige al menos un documento asociado.
func otrosDocumentosDonacion(docs []OtroDocumento) []map[string]any {
	if len(docs) == 0 {
		return []map[string]any{{
			"codDocAsociado":   1,
			"descDocumento":    "Documento de donación",
			"detalleDocumento": "Comprobante de donación electrónica",
		}}
	}
	resultado := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		cod := doc.CodDocAsociado
		if cod == 0 {
			cod = 1
		}
		resultado = append(resultado, map[string]any{
			"codDocAsociado":   cod,
			"descDocumento":    oDefecto(doc.DescDocumento, "Documento de donación"),
			"detalleDocumento": oDefecto(doc.DetalleDocumento, "Comprobante de donación electrónica"),
		})
	}
	return resultado
}
