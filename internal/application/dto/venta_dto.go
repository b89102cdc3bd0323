package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// DetalleVentaRequest línea de un documento fiscal.
type DetalleVentaRequest struct {
	Codigo         string          `json:"codigo"`
	Descripcion    string          `json:"descripcion"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	MontoDescuento decimal.Decimal `json:"monto_descuento"`
	VentaGravada   decimal.Decimal `json:"venta_gravada"`
	VentaExenta    decimal.Decimal `json:"venta_exenta"`
	VentaNoSujeta  decimal.Decimal `json:"venta_no_sujeta"`
}

// CreateVentaRequest alta de un documento fiscal. El receptor puede venir
// como cliente registrado (cliente_id) o inline para consumidor final.
type CreateVentaRequest struct {
	TipoDTE      string    `json:"tipo_dte"`
	ClienteID    string    `json:"cliente_id"`
	FechaEmision time.Time `json:"fecha_emision"`

	NombreReceptor    string `json:"nombre_receptor"`
	TipoDocReceptor   string `json:"tipo_doc_receptor"`
	DocumentoReceptor string `json:"documento_receptor"`
	DireccionReceptor string `json:"direccion_receptor"`
	CorreoReceptor    string `json:"correo_receptor"`

	CondicionOperacion int    `json:"condicion_operacion"`
	PlazoCredito       string `json:"plazo_credito"`
	PeriodoCredito     int    `json:"periodo_credito"`

	VentaRelacionadaID string `json:"venta_relacionada_id"`

	IVARetenido decimal.Decimal `json:"iva_retenido"`
	ReteRenta   decimal.Decimal `json:"rete_renta"`

	Detalles []DetalleVentaRequest `json:"detalles"`
}

// AVenta convierte la petición en la entidad, atada a la empresa.
func (r CreateVentaRequest) AVenta(empresaID string) *entity.Venta {
	v := &entity.Venta{
		EmpresaID:          empresaID,
		ClienteID:          r.ClienteID,
		TipoDTE:            r.TipoDTE,
		FechaEmision:       r.FechaEmision,
		NombreReceptor:     r.NombreReceptor,
		TipoDocReceptor:    r.TipoDocReceptor,
		DocumentoReceptor:  r.DocumentoReceptor,
		DireccionReceptor:  r.DireccionReceptor,
		CorreoReceptor:     r.CorreoReceptor,
		CondicionOperacion: r.CondicionOperacion,
		PlazoCredito:       r.PlazoCredito,
		PeriodoCredito:     r.PeriodoCredito,
		VentaRelacionadaID: r.VentaRelacionadaID,
		IVARetenido:        r.IVARetenido,
		ReteRenta:          r.ReteRenta,
	}
	for _, d := range r.Detalles {
		v.Detalles = append(v.Detalles, entity.DetalleVenta{
			Codigo:         d.Codigo,
			Descripcion:    d.Descripcion,
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			MontoDescuento: d.MontoDescuento,
			VentaGravada:   d.VentaGravada,
			VentaExenta:    d.VentaExenta,
			VentaNoSujeta:  d.VentaNoSujeta,
		})
	}
	return v
}

// InvalidarVentaRequest solicitud de anulación de un DTE aceptado.
type InvalidarVentaRequest struct {
	Motivo string `json:"motivo"`
}

// DetalleVentaResponse línea persistida.
type DetalleVentaResponse struct {
	NumeroItem     int             `json:"numero_item"`
	Codigo         string          `json:"codigo,omitempty"`
	Descripcion    string          `json:"descripcion"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	MontoDescuento decimal.Decimal `json:"monto_descuento"`
	VentaGravada   decimal.Decimal `json:"venta_gravada"`
	VentaExenta    decimal.Decimal `json:"venta_exenta"`
	VentaNoSujeta  decimal.Decimal `json:"venta_no_sujeta"`
}

// VentaResponse documento fiscal con su estado ante MH.
type VentaResponse struct {
	ID        string `json:"id"`
	EmpresaID string `json:"empresa_id"`
	ClienteID string `json:"cliente_id,omitempty"`

	TipoDTE      string    `json:"tipo_dte"`
	FechaEmision time.Time `json:"fecha_emision"`

	CodigoGeneracion string `json:"codigo_generacion,omitempty"`
	NumeroControl    string `json:"numero_control,omitempty"`
	SelloRecepcion   string `json:"sello_recepcion,omitempty"`

	NombreReceptor    string `json:"nombre_receptor,omitempty"`
	DocumentoReceptor string `json:"documento_receptor,omitempty"`

	VentaGravada  decimal.Decimal `json:"venta_gravada"`
	VentaExenta   decimal.Decimal `json:"venta_exenta"`
	VentaNoSujeta decimal.Decimal `json:"venta_no_sujeta"`
	DebitoFiscal  decimal.Decimal `json:"debito_fiscal"`

	CondicionOperacion int `json:"condicion_operacion"`

	EstadoDTE       string `json:"estado_dte"`
	ErrorEnvio      string `json:"error_envio,omitempty"`
	ObservacionesMH string `json:"observaciones_mh,omitempty"`

	Detalles []DetalleVentaResponse `json:"detalles,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DesdeVenta arma la respuesta del documento.
func DesdeVenta(v *entity.Venta) VentaResponse {
	out := VentaResponse{
		ID:                 v.ID,
		EmpresaID:          v.EmpresaID,
		ClienteID:          v.ClienteID,
		TipoDTE:            v.TipoDTE,
		FechaEmision:       v.FechaEmision,
		CodigoGeneracion:   v.CodigoGeneracion,
		NumeroControl:      v.NumeroControl,
		SelloRecepcion:     v.SelloRecepcion,
		NombreReceptor:     v.NombreReceptor,
		DocumentoReceptor:  v.DocumentoReceptor,
		VentaGravada:       v.VentaGravada,
		VentaExenta:        v.VentaExenta,
		VentaNoSujeta:      v.VentaNoSujeta,
		DebitoFiscal:       v.DebitoFiscal,
		CondicionOperacion: v.CondicionOperacion,
		EstadoDTE:          v.EstadoDTE,
		ErrorEnvio:         v.ErrorEnvio,
		ObservacionesMH:    v.ObservacionesMH,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
	for _, d := range v.Detalles {
		out.Detalles = append(out.Detalles, DetalleVentaResponse{
			NumeroItem:     d.NumeroItem,
			Codigo:         d.Codigo,
			Descripcion:    d.Descripcion,
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			MontoDescuento: d.MontoDescuento,
			VentaGravada:   d.VentaGravada,
			VentaExenta:    d.VentaExenta,
			VentaNoSujeta:  d.VentaNoSujeta,
		})
	}
	return out
}

// TareaResponse estado del trabajo asíncrono de una venta.
type TareaResponse struct {
	ID               string     `json:"id"`
	VentaID          string     `json:"venta_id"`
	Tipo             string     `json:"tipo"`
	Estado           string     `json:"estado"`
	Intentos         int        `json:"intentos"`
	ProximoReintento *time.Time `json:"proximo_reintento,omitempty"`
	ErrorMensaje     string     `json:"error_mensaje,omitempty"`
}

// DesdeTarea arma la respuesta de la tarea.
func DesdeTarea(t *entity.TareaFacturacion) TareaResponse {
	return TareaResponse{
		ID:               t.ID,
		VentaID:          t.VentaID,
		Tipo:             t.Tipo,
		Estado:           t.Estado,
		Intentos:         t.Intentos,
		ProximoReintento: t.ProximoReintento,
		ErrorMensaje:     t.ErrorMensaje,
	}
}
