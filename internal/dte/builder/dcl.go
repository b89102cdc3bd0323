package builder

import (
	"github.com/jhoicas/Facturacion-api/internal/domain"
)

// construirDCL arma un Documento Contable de Liquidación (fe-dcl-v1). Es el
// único tipo cuyo cuerpoDocumento es un objeto con el detalle del período
// liquidado, y no lleva sección resumen.
func construirDCL(c *construccion, doc Documento) (map[string]any, error) {
	d, ok := doc.(*DocContableLiquidacion)
	if !ok {
		return nil, &domain.ErrorEsquema{Restriccion: "el documento contable de liquidación requiere el detalle del período"}
	}
	if d.PeriodoFin.Before(d.PeriodoInicio) {
		return nil, &domain.ErrorEsquema{Restriccion: "el período de liquidación es inválido"}
	}

	codEstable, codPunto := codigosEstablecimiento(c.empresa)
	emisor := seccionEmisor(c.empresa)
	emisor["codigoMH"] = codEstable
	emisor["codigo"] = codEstable
	emisor["puntoVentaMH"] = codPunto
	emisor["puntoVentaContri"] = codPunto

	receptor := seccionParte(d.Receptor, true)
	receptor["codigoMH"] = codEstable
	receptor["puntoVentaMH"] = codPunto

	liquido := d.LiquidoAPagar.Round(2)
	cuerpo := map[string]any{
		"periodoLiquidacionFechaInicio": d.PeriodoInicio.Format("2006-01-02"),
		"periodoLiquidacionFechaFin":    d.PeriodoFin.Format("2006-01-02"),
		"codLiquidacion":                truncar(oDefecto(d.CodLiquidacion, "LIQ-001"), 30),
		"cantidadDoc":                   d.CantidadDocumentos,
		"valorOperaciones":              num(d.ValorOperaciones),
		"montoSinPercepcion":            num(d.MontoSinPercepcion),
		"descripSinPercepcion":          truncar(oDefecto(d.DescripSinPercepcion, "N/A"), 100),
		"subTotal":                      num(d.SubTotal),
		"iva":                           num(d.IVA),
		"montoSujetoPercepcion":         num(d.MontoSujetoPercepcion),
		"ivaPercibido":                  num(d.IVAPercibido),
		"comision":                      num(d.Comision),
		"porcentComision":               truncar(d.PorcentajeComision, 100),
		"ivaComision":                   num(d.IVAComision),
		"liquidoApagar":                 num(liquido),
		"totalLetras":                   totalLetras(liquido),
		"observaciones":                 valorONulo(truncar(d.Observaciones, 200)),
	}

	return map[string]any{
		"identificacion":  c.ident,
		"emisor":          emisor,
		"receptor":        receptor,
		"cuerpoDocumento": cuerpo,
		"extension": map[string]any{
			"nombEntrega": oDefecto(d.Entrega.NombEntrega, "Sistema"),
			"docuEntrega": oDefecto(d.Entrega.DocuEntrega, "00000000"),
			"codEmpleado": oDefecto(d.CodEmpleado, "001"),
		},
		"apendice": seccionApendice(d.Apendice, "Información", "Documento Contable de Liquidación"),
	}, nil
}
