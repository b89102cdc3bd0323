package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de DTE soportados (catálogo CAT-002).
const (
	TipoDTEFactura        = "01" // Factura (consumidor final)
	TipoDTEComprobante    = "03" // Comprobante de Crédito Fiscal
	TipoDTENotaCredito    = "05"
	TipoDTENotaDebito     = "06"
	TipoDTERetencion      = "07" // Comprobante de Retención
	TipoDTELiquidacion    = "08" // Comprobante de Liquidación
	TipoDTEDocLiquidacion = "09" // Documento Contable de Liquidación
	TipoDTESujetoExcluido = "14" // Factura de Sujeto Excluido
	TipoDTEDonacion       = "15" // Comprobante de Donación
)

// Estados del ciclo de vida fiscal de una venta.
const (
	EstadoDTEBorrador       = "Borrador"
	EstadoDTEPendienteEnvio = "PendienteEnvio"
	EstadoDTERechazadoMH    = "RechazadoMH"
	EstadoDTEAceptadoMH     = "AceptadoMH"
	EstadoDTEAnulado        = "Anulado"
)

// Condiciones de operación (catálogo CAT-016).
const (
	CondicionContado = 1
	CondicionCredito = 2
	CondicionOtro    = 3
)

// Venta representa un documento fiscal emitido (cualquier tipo de DTE).
type Venta struct {
	ID        string
	EmpresaID string
	ClienteID string // vacío cuando el receptor va inline (consumidor final sin registrar)

	TipoDTE      string
	FechaEmision time.Time

	// Identificadores fiscales. Se estampan en el primer build y se
	// reutilizan en reconstrucciones (idempotencia).
	CodigoGeneracion string // UUID v4 en mayúsculas
	NumeroControl    string // DTE-TT-EEEEPPPP-NNNNNNNNNNNNNNN (31 chars)
	SelloRecepcion   string // sello devuelto por MH al aceptar

	// Receptor desnormalizado (snapshot al momento de emitir).
	NombreReceptor    string
	NRCReceptor       string
	TipoDocReceptor   string // CAT-022
	DocumentoReceptor string
	DireccionReceptor string
	CorreoReceptor    string

	// Totales. Siempre se reagregan desde los detalles al construir el DTE.
	VentaGravada  decimal.Decimal
	VentaExenta   decimal.Decimal
	VentaNoSujeta decimal.Decimal
	DebitoFiscal  decimal.Decimal
	IVARetenido   decimal.Decimal
	ReteRenta     decimal.Decimal

	// Condición de la operación (CAT-016) y términos de crédito.
	CondicionOperacion int
	PlazoCredito       string // CAT-017: "01" días, "02" meses, "03" años
	PeriodoCredito     int

	// Para notas de crédito/débito: venta relacionada que se ajusta.
	VentaRelacionadaID string

	EstadoDTE       string
	ErrorEnvio      string // último mensaje de error de envío
	ObservacionesMH string // observaciones devueltas por MH en rechazo

	JSONFirmado string // JWS compacto del último envío

	Detalles []DetalleVenta

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DetalleVenta es una línea del documento.
type DetalleVenta struct {
	ID             string
	VentaID        string
	NumeroItem     int
	Codigo         string
	Descripcion    string
	Cantidad       decimal.Decimal
	PrecioUnitario decimal.Decimal
	MontoDescuento decimal.Decimal
	VentaGravada   decimal.Decimal
	VentaExenta    decimal.Decimal
	VentaNoSujeta  decimal.Decimal
}
