package facturacion

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// InvalidarVenta construye, firma y transmite el evento de invalidación del
// DTE de la venta (esquema anulacion v2). Solo un documento en AceptadoMH
// puede anularse; una venta ya anulada es un no-op. El motivo queda
// registrado en el evento; vacío usa la rescisión genérica.
func (e *Emisor) InvalidarVenta(ctx context.Context, ventaID, motivo string) error {
	venta, err := e.ventas.GetByID(ctx, ventaID)
	if err != nil {
		return fmt.Errorf("invalidacion: cargando venta %s: %w", ventaID, err)
	}
	if venta.EstadoDTE == entity.EstadoDTEAnulado {
		return nil
	}
	if venta.EstadoDTE != entity.EstadoDTEAceptadoMH {
		return fmt.Errorf("invalidacion: %w: solo se anula un DTE aceptado por MH, la venta %s está en %q",
			domain.ErrConflict, ventaID, venta.EstadoDTE)
	}

	empresa, err := e.empresas.GetByID(ctx, venta.EmpresaID)
	if err != nil {
		return fmt.Errorf("invalidacion: cargando empresa: %w", err)
	}

	evento, codigoEvento, err := e.construirEventoInvalidacion(empresa, venta, motivo)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(evento)
	if err != nil {
		return fmt.Errorf("invalidacion: serializando evento: %w", err)
	}

	jws, err := e.firmador.FirmarDTE(empresa.ArchivoCertificado, empresa.ClaveCertificado, payload)
	if err != nil {
		return e.marcarFalloInvalidacion(ctx, venta, err)
	}

	err = e.mh.InvalidarDTE(ctx, empresa, EnvioEvento{
		TipoDTE:          venta.TipoDTE,
		CodigoGeneracion: codigoEvento,
		Documento:        jws,
	})
	if err != nil {
		return e.marcarFalloInvalidacion(ctx, venta, err)
	}

	venta.EstadoDTE = entity.EstadoDTEAnulado
	venta.ErrorEnvio = ""
	venta.ObservacionesMH = ""
	if err := e.ventas.UpdateEstadoDTE(ctx, venta); err != nil {
		return fmt.Errorf("invalidacion: guardando anulación: %w", err)
	}
	e.log.Info().
		Str("venta_id", venta.ID).
		Str("codigo_evento", codigoEvento).
		Msg("DTE invalidado ante MH")
	return nil
}

// construirEventoInvalidacion arma el cuerpo del evento. El evento lleva su
// propio codigoGeneracion, distinto del DTE que anula. tipoAnulacion 2
// (rescisión de la operación) no exige documento de reemplazo, por eso
// codigoGeneracionR viaja null.
func (e *Emisor) construirEventoInvalidacion(empresa *entity.Empresa, venta *entity.Venta, motivo string) (map[string]any, string, error) {
	sello := strings.NewReplacer("-", "", " ", "").Replace(venta.SelloRecepcion)
	if len(sello) != 40 {
		return nil, "", &domain.ErrorEsquema{
			Restriccion: fmt.Sprintf("el sello de recepción debe tener 40 caracteres, tiene %d", len(sello)),
		}
	}

	nit := soloDigitos(empresa.NIT)
	if len(nit) != 14 {
		for len(nit) < 9 {
			nit = "0" + nit
		}
	}

	codigoEvento := strings.ToUpper(uuid.New().String())
	ahora := e.reloj().In(tzElSalvador)

	numeroControl := venta.NumeroControl
	if len(numeroControl) > 31 {
		numeroControl = numeroControl[:31]
	}

	motivoTexto := strings.TrimSpace(motivo)
	if motivoTexto == "" {
		motivoTexto = "Rescisión de la operación"
	}

	montoIVA, _ := venta.DebitoFiscal.Round(2).Float64()

	evento := map[string]any{
		"identificacion": map[string]any{
			"version":          2,
			"ambiente":         entity.CodigoAmbienteDTE(empresa.Ambiente),
			"codigoGeneracion": codigoEvento,
			"fecAnula":         ahora.Format("2006-01-02"),
			"horAnula":         ahora.Format("15:04:05"),
		},
		"emisor": map[string]any{
			"nit":                 nit,
			"nombre":              empresa.Nombre,
			"tipoEstablecimiento": "01",
			"telefono":            valorONuloInv(empresa.Telefono),
			"correo":              valorONuloInv(empresa.Correo),
			"nomEstablecimiento":  valorONuloInv(empresa.NombreComercial),
			"codEstableMH":        nil,
			"codEstable":          nil,
			"codPuntoVentaMH":     nil,
			"codPuntoVenta":       nil,
		},
		"documento": map[string]any{
			"tipoDte":           venta.TipoDTE,
			"codigoGeneracion":  strings.ToUpper(venta.CodigoGeneracion),
			"selloRecibido":     sello,
			"numeroControl":     numeroControl,
			"fecEmi":            fecEmiDelFirmado(venta.JSONFirmado, venta),
			"montoIva":          montoIVA,
			"codigoGeneracionR": nil,
			"tipoDocumento":     valorONuloInv(venta.TipoDocReceptor),
			"numDocumento":      valorONuloInv(venta.DocumentoReceptor),
			"nombre":            valorONuloInv(venta.NombreReceptor),
		},
		"motivo": map[string]any{
			"tipoAnulacion":     2,
			"motivoAnulacion":   motivoTexto,
			"nombreResponsable": empresa.Nombre,
			"tipDocResponsable": "36",
			"numDocResponsable": nit,
			"nombreSolicita":    empresa.Nombre,
			"tipDocSolicita":    "36",
			"numDocSolicita":    nit,
		},
	}
	return evento, codigoEvento, nil
}

// fecEmiDelFirmado recupera la fecha de emisión que realmente viajó en el
// DTE firmado; MH rechaza el evento si no coinciden. Si el JWS no se puede
// leer cae a la fecha de emisión registrada en la venta.
func fecEmiDelFirmado(jws string, venta *entity.Venta) string {
	partes := strings.Split(jws, ".")
	if len(partes) == 3 {
		if crudo, err := base64.RawURLEncoding.DecodeString(partes[1]); err == nil {
			var doc struct {
				Identificacion struct {
					FecEmi string `json:"fecEmi"`
				} `json:"identificacion"`
			}
			if json.Unmarshal(crudo, &doc) == nil && doc.Identificacion.FecEmi != "" {
				return doc.Identificacion.FecEmi
			}
		}
	}
	return venta.FechaEmision.In(tzElSalvador).Format("2006-01-02")
}

// marcarFalloInvalidacion registra el fallo sin tocar el estado: el DTE
// sigue aceptado hasta que MH procese la anulación.
func (e *Emisor) marcarFalloInvalidacion(ctx context.Context, venta *entity.Venta, causa error) error {
	venta.ErrorEnvio = causa.Error()
	if err := e.ventas.UpdateEstadoDTE(ctx, venta); err != nil {
		e.log.Error().Err(err).Str("venta_id", venta.ID).
			Msg("no se pudo persistir el fallo de invalidación")
	}
	return causa
}

func soloDigitos(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func valorONuloInv(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
