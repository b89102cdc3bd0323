// Package builder genera el JSON de los Documentos Tributarios Electrónicos
// (DTE) según los esquemas del Ministerio de Hacienda de El Salvador.
//
// Cada tipo de DTE se registra como una variante: versión de esquema, función
// constructora y lista de campos que MH exige presentes aunque sean null. El
// resultado pasa por una única poda genérica (limpiarNulos) antes de
// serializarse.
package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// tzElSalvador es la zona horaria para fecEmi/horEmi (UTC-6, sin DST).
var tzElSalvador = time.FixedZone("America/El_Salvador", -6*3600)

// GeneradorControl asigna el siguiente número de control (31 caracteres)
// para una empresa, tipo de DTE y punto de emisión.
type GeneradorControl interface {
	SiguienteNumeroControl(ctx context.Context, empresaID, tipoDTE, codEstable, codPunto string) (string, error)
}

// Documento es cualquier fuente capaz de producir un DTE.
type Documento interface {
	TipoDTE() string
	// Identificadores devuelve el código de generación y número de control
	// ya asignados, vacíos si aún no existen. Se reutilizan al reconstruir.
	Identificadores() (codigoGeneracion, numeroControl string)
}

// Resultado es el DTE generado listo para firmar.
type Resultado struct {
	DTE              map[string]any
	JSON             []byte
	CodigoGeneracion string
	NumeroControl    string
	Version          int // versión del esquema; también viaja en el envelope de envío
}

// Builder construye DTEs. El reloj es inyectable para fijar fecEmi/horEmi
// en pruebas; por defecto usa la hora actual de El Salvador.
type Builder struct {
	control GeneradorControl
	reloj   func() time.Time
}

// Opcion configura el Builder.
type Opcion func(*Builder)

// ConReloj fija la fuente de tiempo.
func ConReloj(fn func() time.Time) Opcion {
	return func(b *Builder) { b.reloj = fn }
}

// New crea un Builder.
func New(control GeneradorControl, opts ...Opcion) *Builder {
	b := &Builder{
		control: control,
		reloj:   time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// variante describe cómo se construye un tipo de DTE.
type variante struct {
	version    int
	requeridos []string
	construir  func(c *construccion, doc Documento) (map[string]any, error)
}

// construccion agrupa el contexto de una generación.
type construccion struct {
	empresa  *entity.Empresa
	ident    map[string]any
	ambiente string // código de ambiente que viaja en el DTE
	ahora    time.Time
}

var variantes = map[string]variante{
	entity.TipoDTEFactura:        {version: 1, requeridos: requeridosFC, construir: construirFC},
	entity.TipoDTEComprobante:    {version: 3, requeridos: requeridosCCF, construir: construirCCF},
	entity.TipoDTENotaCredito:    {version: 3, requeridos: requeridosNC, construir: construirNC},
	entity.TipoDTENotaDebito:     {version: 3, requeridos: requeridosND, construir: construirND},
	entity.TipoDTERetencion:      {version: 1, requeridos: nil, construir: construirRetencion},
	entity.TipoDTELiquidacion:    {version: 1, requeridos: nil, construir: construirLiquidacion},
	entity.TipoDTEDocLiquidacion: {version: 1, requeridos: nil, construir: construirDCL},
	entity.TipoDTESujetoExcluido: {version: 1, requeridos: requeridosFSE, construir: construirFSE},
	entity.TipoDTEDonacion:       {version: 1, requeridos: nil, construir: construirDonacion},
}

// Generar produce el DTE completo para el documento dado. Reutiliza
// codigoGeneracion y numeroControl si el documento ya los tiene; si no,
// genera un UUID nuevo y pide el siguiente correlativo.
func (b *Builder) Generar(ctx context.Context, empresa *entity.Empresa, doc Documento) (*Resultado, error) {
	if empresa == nil {
		return nil, fmt.Errorf("builder: %w: empresa requerida", domain.ErrInvalidInput)
	}
	tipo := doc.TipoDTE()
	v, ok := variantes[tipo]
	if !ok {
		return nil, &domain.ErrorEsquema{Restriccion: fmt.Sprintf("tipo de DTE no soportado: %q", tipo)}
	}

	codigoGen, numeroControl := doc.Identificadores()
	if codigoGen == "" {
		codigoGen = uuid.New().String()
	}
	codigoGen = strings.ToUpper(codigoGen)

	codEstable, codPunto := codigosEstablecimiento(empresa)
	if len(numeroControl) != 31 {
		var err error
		numeroControl, err = b.control.SiguienteNumeroControl(ctx, empresa.ID, tipo, codEstable, codPunto)
		if err != nil {
			return nil, fmt.Errorf("builder: asignando número de control: %w", err)
		}
	}

	// fecEmi siempre es la fecha actual: MH exige que coincida con la fecha
	// de envío, aunque la venta tenga una fecha de emisión anterior.
	ahora := b.reloj().In(tzElSalvador)

	c := &construccion{
		empresa:  empresa,
		ambiente: entity.CodigoAmbienteDTE(empresa.Ambiente),
		ahora:    ahora,
		ident: map[string]any{
			"version":          v.version,
			"ambiente":         entity.CodigoAmbienteDTE(empresa.Ambiente),
			"tipoDte":          tipo,
			"numeroControl":    numeroControl,
			"codigoGeneracion": codigoGen,
			"fecEmi":           ahora.Format("2006-01-02"),
			"horEmi":           ahora.Format("15:04:05"),
			"tipoModelo":       1,
			"tipoOperacion":    1,
			"tipoContingencia": nil,
			"motivoContin":     nil,
			"tipoMoneda":       "USD",
		},
	}

	dte, err := v.construir(c, doc)
	if err != nil {
		return nil, err
	}

	limpio := limpiarNulos(dte, v.requeridos)
	if resumen, ok := limpio["resumen"].(map[string]any); ok {
		if v, ok := resumen["reteIVA"].(float64); ok && v == 0 {
			delete(resumen, "reteIVA")
		}
	}

	payload, err := json.Marshal(limpio)
	if err != nil {
		return nil, fmt.Errorf("builder: serializando DTE: %w", err)
	}
	return &Resultado{
		DTE:              limpio,
		JSON:             payload,
		CodigoGeneracion: codigoGen,
		NumeroControl:    numeroControl,
		Version:          v.version,
	}, nil
}

func codigosEstablecimiento(e *entity.Empresa) (codEstable, codPunto string) {
	codEstable = strings.TrimSpace(e.CodEstablecimiento)
	if codEstable == "" {
		codEstable = "M001"
	}
	codPunto = strings.TrimSpace(e.CodPuntoVenta)
	if codPunto == "" {
		codPunto = "P001"
	}
	return codEstable, codPunto
}
