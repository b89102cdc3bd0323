package builder

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// Campos que fe-fse-v1 exige presentes aunque sean null.
var requeridosFSE = []string{
	"identificacion.tipoContingencia", "identificacion.motivoContin",
	"emisor.nrc",
	"sujetoExcluido.codActividad", "sujetoExcluido.descActividad",
	"sujetoExcluido.telefono", "sujetoExcluido.correo",
	"resumen.totalDescu", "resumen.observaciones",
	"resumen.pagos.referencia", "resumen.pagos.plazo", "resumen.pagos.periodo",
}

// construirFSE arma una Factura de Sujeto Excluido (fe-fse-v1): la empresa
// documenta una compra a un proveedor que no puede emitir DTE propio.
func construirFSE(c *construccion, doc Documento) (map[string]any, error) {
	d, ok := doc.(*SujetoExcluido)
	if !ok {
		return nil, &domain.ErrorEsquema{Restriccion: "la factura de sujeto excluido requiere los datos del proveedor"}
	}
	sujeto, err := seccionSujetoExcluido(d)
	if err != nil {
		return nil, err
	}
	if len(d.Items) == 0 {
		return nil, &domain.ErrorEsquema{Restriccion: "la factura de sujeto excluido requiere al menos una línea de compra"}
	}

	emisor := seccionEmisor(c.empresa)
	delete(emisor, "nombreComercial")

	cuerpo := make([]map[string]any, 0, len(d.Items))
	totalCompra := decimal.Zero
	totalDescu := decimal.Zero
	for i, item := range d.Items {
		precio := item.PrecioUnitario.Round(2)
		cantidad := item.Cantidad.Round(2)
		descuento := item.MontoDescuento.Round(2)
		compra := precio.Mul(cantidad).Round(2).Sub(descuento)
		totalCompra = totalCompra.Add(compra)
		totalDescu = totalDescu.Add(descuento)

		tipoItem := item.TipoItem
		if tipoItem == 0 {
			tipoItem = 1
		}
		uniMedida := item.UniMedida
		if uniMedida == 0 {
			uniMedida = 59
		}
		cuerpo = append(cuerpo, map[string]any{
			"numItem":     i + 1,
			"tipoItem":    tipoItem,
			"cantidad":    num(cantidad),
			"codigo":      truncar(oDefecto(item.Codigo, "LIBRE"), 25),
			"uniMedida":   uniMedida,
			"descripcion": truncar(oDefecto(item.Descripcion, "Compra"), 1000),
			"precioUni":   num(precio),
			"montoDescu":  num(descuento),
			"compra":      num(compra),
		})
	}

	subTotal := totalCompra.Round(2)
	ivaRetenido := d.IVARetenido.Round(2)
	reteRenta := d.ReteRenta.Round(2)
	totalPagar := subTotal.Sub(ivaRetenido).Sub(reteRenta).Round(2)

	condicion := d.CondicionOperacion
	if condicion == 0 {
		condicion = entity.CondicionContado
	}

	return map[string]any{
		"identificacion": c.ident,
		"emisor":         emisor,
		"sujetoExcluido": sujeto,
		"cuerpoDocumento": cuerpo,
		"resumen": map[string]any{
			"totalCompra": num(totalCompra),
			"descu":       num(totalDescu),
			"totalDescu":  num(totalDescu),
			"subTotal":    num(subTotal),
			"ivaRete1":    num(ivaRetenido),
			"reteRenta":   num(reteRenta),
			"totalPagar":  num(totalPagar),
			"totalLetras": totalLetras(totalPagar),
			"condicionOperacion": condicion,
			"pagos": []map[string]any{{
				"codigo":     "01",
				"montoPago":  num(totalPagar),
				"referencia": nil,
				"plazo":      nil,
				"periodo":    nil,
			}},
			"observaciones": valorONulo(d.Observaciones),
		},
		"apendice": seccionApendice(d.Apendice, "Información", "Factura de Sujeto Excluido"),
	}, nil
}

// seccionSujetoExcluido clasifica el documento del proveedor: NIT de 14
// dígitos, DUI de 9, o DUI con dígito verificador (10, se recorta).
func seccionSujetoExcluido(d *SujetoExcluido) (map[string]any, error) {
	documento := soloDigitos(d.Documento)
	var tipoDoc string
	switch len(documento) {
	case 14:
		tipoDoc = entity.TipoDocNIT
	case 9:
		tipoDoc = entity.TipoDocDUI
	case 10:
		tipoDoc = entity.TipoDocDUI
		documento = documento[:9]
	default:
		return nil, &domain.ErrorEsquema{
			Restriccion: "el sujeto excluido requiere un DUI (9 dígitos) o NIT (14 dígitos)",
		}
	}
	return map[string]any{
		"tipoDocumento": tipoDoc,
		"numDocumento":  documento,
		"nombre":        oDefecto(d.Nombre, "Proveedor"),
		"codActividad":  nil,
		"descActividad": nil,
		"direccion": map[string]any{
			"departamento": codigoUbicacion(d.Departamento, "06"),
			"municipio":    codigoUbicacion(d.Municipio, "14"),
			"complemento":  oDefecto(d.Direccion, "San Salvador"),
		},
		"telefono": nil,
		"correo":   nil,
	}, nil
}
