package builder

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// Parte son los datos de una persona o establecimiento dentro de un DTE
// (agente retenedor, receptor de liquidación, donante, donatario).
type Parte struct {
	NIT             string
	NRC             string
	Nombre          string
	NombreComercial string
	CodActividad    string
	DescActividad   string
	Departamento    string
	Municipio       string
	Direccion       string
	Telefono        string
	Correo          string
}

// Apendice es una entrada del apéndice de un DTE.
type Apendice struct {
	Campo    string
	Etiqueta string
	Valor    string
}

// VentaDTE adapta una Venta (con su cliente y, para notas, la venta
// relacionada) al builder. Cubre los tipos 01, 03, 05 y 06.
type VentaDTE struct {
	Venta       *entity.Venta
	Cliente     *entity.Cliente // nil para consumidor final sin registrar
	Relacionada *entity.Venta   // requerida para 05/06
}

func (d *VentaDTE) TipoDTE() string { return d.Venta.TipoDTE }

func (d *VentaDTE) Identificadores() (string, string) {
	return d.Venta.CodigoGeneracion, d.Venta.NumeroControl
}

// ItemRetencion es una línea del cuerpo de un comprobante de retención.
type ItemRetencion struct {
	TipoDTEOrigen   string // tipo del documento retenido, ej. "03"
	TipoDoc         int    // 1 = físico, 2 = electrónico
	NumDocumento    string
	FechaEmision    time.Time
	MontoSujeto     decimal.Decimal
	CodigoRetencion string // catálogo MH, ej. "22"
	IVARetenido     decimal.Decimal
	Descripcion     string
}

// Retencion es la fuente de un DTE-07. El emisor es el agente retenedor;
// el receptor es la empresa retenida (la nuestra).
type Retencion struct {
	Agente           Parte
	Items            []ItemRetencion
	CodigoGeneracion string
	NumeroControl    string
	Entrega          Entrega
	Observaciones    string
	Apendice         []Apendice
}

func (d *Retencion) TipoDTE() string { return entity.TipoDTERetencion }

func (d *Retencion) Identificadores() (string, string) {
	return d.CodigoGeneracion, d.NumeroControl
}

// Entrega identifica a quien entrega y recibe el documento (extension).
type Entrega struct {
	NombEntrega string
	DocuEntrega string
	NombRecibe  string
	DocuRecibe  string
}

// ItemLiquidacion es una línea del cuerpo de un comprobante de liquidación.
type ItemLiquidacion struct {
	TipoDTEOrigen   string
	TipoGeneracion  int // 1 = físico, 2 = electrónico
	NumeroDocumento string
	FechaGeneracion time.Time
	VentaNoSujeta   decimal.Decimal
	VentaExenta     decimal.Decimal
	VentaGravada    decimal.Decimal
	Exportaciones   decimal.Decimal
	IVAItem         decimal.Decimal
	Observacion     string
}

// Liquidacion es la fuente de un DTE-08.
type Liquidacion struct {
	Receptor         Parte
	Items            []ItemLiquidacion
	CodigoGeneracion string
	NumeroControl    string
	Apendice         []Apendice
}

func (d *Liquidacion) TipoDTE() string { return entity.TipoDTELiquidacion }

func (d *Liquidacion) Identificadores() (string, string) {
	return d.CodigoGeneracion, d.NumeroControl
}

// DocContableLiquidacion es la fuente de un DTE-09. A diferencia del resto,
// su cuerpoDocumento es un objeto único con el detalle de la liquidación.
type DocContableLiquidacion struct {
	Receptor              Parte
	PeriodoInicio         time.Time
	PeriodoFin            time.Time
	CodLiquidacion        string
	CantidadDocumentos    int
	ValorOperaciones      decimal.Decimal
	MontoSinPercepcion    decimal.Decimal
	DescripSinPercepcion  string
	SubTotal              decimal.Decimal
	IVA                   decimal.Decimal
	MontoSujetoPercepcion decimal.Decimal
	IVAPercibido          decimal.Decimal
	Comision              decimal.Decimal
	PorcentajeComision    string
	IVAComision           decimal.Decimal
	LiquidoAPagar         decimal.Decimal
	Observaciones         string
	CodEmpleado           string
	Entrega               Entrega
	CodigoGeneracion      string
	NumeroControl         string
	Apendice              []Apendice
}

func (d *DocContableLiquidacion) TipoDTE() string { return entity.TipoDTEDocLiquidacion }

func (d *DocContableLiquidacion) Identificadores() (string, string) {
	return d.CodigoGeneracion, d.NumeroControl
}

// ItemCompra es una línea de compra a sujeto excluido.
type ItemCompra struct {
	TipoItem       int
	Cantidad       decimal.Decimal
	Codigo         string
	UniMedida      int
	Descripcion    string
	PrecioUnitario decimal.Decimal
	MontoDescuento decimal.Decimal
}

// SujetoExcluido es la fuente de un DTE-14: compra a un proveedor informal
// que no puede emitir DTE propio. El emisor es nuestra empresa.
type SujetoExcluido struct {
	// Documento es el DUI (9 dígitos) o NIT (14 dígitos) del proveedor,
	// con o sin guiones.
	Documento          string
	Nombre             string
	Departamento       string
	Municipio          string
	Direccion          string
	Items              []ItemCompra
	IVARetenido        decimal.Decimal
	ReteRenta          decimal.Decimal
	CondicionOperacion int
	Observaciones      string
	CodigoGeneracion   string
	NumeroControl      string
	Apendice           []Apendice
}

func (d *SujetoExcluido) TipoDTE() string { return entity.TipoDTESujetoExcluido }

func (d *SujetoExcluido) Identificadores() (string, string) {
	return d.CodigoGeneracion, d.NumeroControl
}

// ItemDonacion es una línea de un comprobante de donación.
type ItemDonacion struct {
	TipoDonacion  int // 1 = bien, 2 = servicio, 3 = efectivo
	Cantidad      decimal.Decimal
	Codigo        string
	UniMedida     int
	Descripcion   string
	Depreciacion  decimal.Decimal
	ValorUnitario decimal.Decimal
	Valor         decimal.Decimal
}

// OtroDocumento es un documento asociado a una donación.
type OtroDocumento struct {
	CodDocAsociado   int // 1 = Otro, 2 = Resolución
	DescDocumento    string
	DetalleDocumento string
}

// Donacion es la fuente de un DTE-15. Usa donante y donatario en lugar de
// emisor y receptor.
type Donacion struct {
	Donante          Parte
	CodDomiciliado   int
	CodPais          string
	Donatario        Parte
	OtrosDocumentos  []OtroDocumento
	Items            []ItemDonacion
	CodigoGeneracion string
	NumeroControl    string
	Apendice         []Apendice
}

func (d *Donacion) TipoDTE() string { return entity.TipoDTEDonacion }

func (d *Donacion) Identificadores() (string, string) {
	return d.CodigoGeneracion, d.NumeroControl
}
