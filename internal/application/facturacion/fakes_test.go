package facturacion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
	"github.com/jhoicas/Facturacion-api/internal/dte/builder"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

func loggerPrueba() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

// ── repos en memoria ────────────────────────────────────────────────────

type correlativoRepoFake struct {
	filas map[string]*entity.Correlativo
	// fallosCreate hace que las próximas n llamadas a Create devuelvan
	// ErrDuplicate sin insertar, simulando la transacción perdedora.
	fallosCreate int
	secuencia    int
}

func nuevoCorrelativoRepoFake() *correlativoRepoFake {
	return &correlativoRepoFake{filas: map[string]*entity.Correlativo{}}
}

func claveCorrelativo(empresaID, tipoDTE string, anio int) string {
	return fmt.Sprintf("%s|%s|%d", empresaID, tipoDTE, anio)
}

func (f *correlativoRepoFake) GetForUpdate(_ context.Context, empresaID, tipoDTE string, anio int) (*entity.Correlativo, error) {
	c, ok := f.filas[claveCorrelativo(empresaID, tipoDTE, anio)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copia := *c
	return &copia, nil
}

func (f *correlativoRepoFake) Create(_ context.Context, c *entity.Correlativo) error {
	if f.fallosCreate > 0 {
		f.fallosCreate--
		return domain.ErrDuplicate
	}
	f.secuencia++
	c.ID = fmt.Sprintf("corr-%d", f.secuencia)
	copia := *c
	f.filas[claveCorrelativo(c.EmpresaID, c.TipoDTE, c.Anio)] = &copia
	return nil
}

func (f *correlativoRepoFake) UpdateUltimoNumero(_ context.Context, id string, ultimo int64) error {
	for _, c := range f.filas {
		if c.ID == id {
			c.UltimoNumero = ultimo
			return nil
		}
	}
	return domain.ErrNotFound
}

type ventaRepoFake struct {
	ventas    map[string]*entity.Venta
	detalles  map[string][]entity.DetalleVenta
	secuencia int
}

func nuevoVentaRepoFake() *ventaRepoFake {
	return &ventaRepoFake{
		ventas:   map[string]*entity.Venta{},
		detalles: map[string][]entity.DetalleVenta{},
	}
}

func (f *ventaRepoFake) Create(_ context.Context, v *entity.Venta) error {
	if v.ID == "" {
		f.secuencia++
		v.ID = fmt.Sprintf("venta-%d", f.secuencia)
	}
	if v.EstadoDTE == "" {
		v.EstadoDTE = entity.EstadoDTEBorrador
	}
	copia := *v
	f.ventas[v.ID] = &copia
	return nil
}

func (f *ventaRepoFake) CreateDetalle(_ context.Context, d *entity.DetalleVenta) error {
	f.detalles[d.VentaID] = append(f.detalles[d.VentaID], *d)
	return nil
}

func (f *ventaRepoFake) GetByID(_ context.Context, id string) (*entity.Venta, error) {
	v, ok := f.ventas[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copia := *v
	copia.Detalles = append([]entity.DetalleVenta(nil), f.detalles[id]...)
	return &copia, nil
}

func (f *ventaRepoFake) GetDetalles(_ context.Context, ventaID string) ([]entity.DetalleVenta, error) {
	return append([]entity.DetalleVenta(nil), f.detalles[ventaID]...), nil
}

func (f *ventaRepoFake) ListByEmpresa(_ context.Context, empresaID string, limit, _ int) ([]*entity.Venta, error) {
	var list []*entity.Venta
	for _, v := range f.ventas {
		if v.EmpresaID == empresaID && len(list) < limit {
			copia := *v
			list = append(list, &copia)
		}
	}
	return list, nil
}

func (f *ventaRepoFake) UpdateIdentificadores(_ context.Context, id, codigoGeneracion, numeroControl string) error {
	v, ok := f.ventas[id]
	if !ok {
		return domain.ErrNotFound
	}
	v.CodigoGeneracion = codigoGeneracion
	v.NumeroControl = numeroControl
	return nil
}

func (f *ventaRepoFake) UpdateEstadoDTE(_ context.Context, v *entity.Venta) error {
	guardada, ok := f.ventas[v.ID]
	if !ok {
		return domain.ErrNotFound
	}
	guardada.EstadoDTE = v.EstadoDTE
	guardada.SelloRecepcion = v.SelloRecepcion
	guardada.ErrorEnvio = v.ErrorEnvio
	guardada.ObservacionesMH = v.ObservacionesMH
	guardada.JSONFirmado = v.JSONFirmado
	return nil
}

type tareaRepoFake struct {
	tareas    map[string]*entity.TareaFacturacion
	secuencia int
}

func nuevoTareaRepoFake() *tareaRepoFake {
	return &tareaRepoFake{tareas: map[string]*entity.TareaFacturacion{}}
}

func (f *tareaRepoFake) Create(_ context.Context, t *entity.TareaFacturacion) error {
	if t.ID == "" {
		f.secuencia++
		t.ID = fmt.Sprintf("tarea-%d", f.secuencia)
	}
	if t.Estado == "" {
		t.Estado = entity.TareaPendiente
	}
	copia := *t
	f.tareas[t.ID] = &copia
	return nil
}

func (f *tareaRepoFake) GetByID(_ context.Context, id string) (*entity.TareaFacturacion, error) {
	t, ok := f.tareas[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copia := *t
	return &copia, nil
}

func (f *tareaRepoFake) GetByVenta(_ context.Context, ventaID, tipo string) (*entity.TareaFacturacion, error) {
	for _, t := range f.tareas {
		if t.VentaID == ventaID && t.Tipo == tipo {
			copia := *t
			return &copia, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *tareaRepoFake) ClaimPendientes(_ context.Context, limit int, lease time.Duration, now time.Time) ([]*entity.TareaFacturacion, error) {
	var list []*entity.TareaFacturacion
	for _, t := range f.tareas {
		if len(list) >= limit {
			break
		}
		elegible := false
		switch t.Estado {
		case entity.TareaPendiente:
			elegible = t.ProximoReintento == nil || !t.ProximoReintento.After(now)
		case entity.TareaProcesando:
			elegible = t.IniciadaAt != nil && t.IniciadaAt.Before(now.Add(-lease))
		}
		if !elegible {
			continue
		}
		t.Estado = entity.TareaProcesando
		inicio := now
		t.IniciadaAt = &inicio
		copia := *t
		list = append(list, &copia)
	}
	return list, nil
}

func (f *tareaRepoFake) Update(_ context.Context, t *entity.TareaFacturacion) error {
	if _, ok := f.tareas[t.ID]; !ok {
		return domain.ErrNotFound
	}
	copia := *t
	f.tareas[t.ID] = &copia
	return nil
}

type empresaRepoFake struct {
	empresas map[string]*entity.Empresa
}

func (f *empresaRepoFake) Create(_ context.Context, e *entity.Empresa) error {
	f.empresas[e.ID] = e
	return nil
}

func (f *empresaRepoFake) Update(_ context.Context, e *entity.Empresa) error {
	f.empresas[e.ID] = e
	return nil
}

func (f *empresaRepoFake) GetByID(_ context.Context, id string) (*entity.Empresa, error) {
	e, ok := f.empresas[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (f *empresaRepoFake) List(_ context.Context, _, _ int) ([]*entity.Empresa, error) {
	return nil, nil
}

type clienteRepoFake struct {
	clientes map[string]*entity.Cliente
}

func (f *clienteRepoFake) Create(_ context.Context, c *entity.Cliente) error {
	f.clientes[c.ID] = c
	return nil
}

func (f *clienteRepoFake) Update(_ context.Context, c *entity.Cliente) error {
	f.clientes[c.ID] = c
	return nil
}

func (f *clienteRepoFake) GetByID(_ context.Context, _, id string) (*entity.Cliente, error) {
	c, ok := f.clientes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (f *clienteRepoFake) ListByEmpresa(_ context.Context, _ string, _, _ int) ([]*entity.Cliente, error) {
	return nil, nil
}

// txFake corre los callbacks directo contra los fakes, sin transacción real.
// El mutex serializa RunCorrelativo igual que el candado FOR UPDATE: dos
// transacciones nunca ven el mismo UltimoNumero.
type txFake struct {
	mu           sync.Mutex
	correlativos *correlativoRepoFake
	ventas       *ventaRepoFake
	tareas       *tareaRepoFake
}

func (f *txFake) RunCorrelativo(_ context.Context, fn func(repo repository.CorrelativoRepository) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(f.correlativos)
}

func (f *txFake) RunVenta(_ context.Context, fn func(ventaRepo repository.VentaRepository, tareaRepo repository.TareaRepository) error) error {
	return fn(f.ventas, f.tareas)
}

// ── colaboradores del emisor ────────────────────────────────────────────

type generadorFake struct {
	resultado *builder.Resultado
	err       error
	ultimoDoc builder.Documento
}

func (f *generadorFake) Generar(_ context.Context, _ *entity.Empresa, doc builder.Documento) (*builder.Resultado, error) {
	f.ultimoDoc = doc
	if f.err != nil {
		return nil, f.err
	}
	return f.resultado, nil
}

type firmadorFake struct {
	jws           string
	err           error
	ultimoPayload []byte
}

func (f *firmadorFake) FirmarDTE(_, _ string, payload []byte) (string, error) {
	f.ultimoPayload = append([]byte(nil), payload...)
	if f.err != nil {
		return "", f.err
	}
	return f.jws, nil
}

type transmisorFake struct {
	sello     string
	errEnvio  error
	errEvento error
	envios    []EnvioDTE
	eventos   []EnvioEvento
}

func (f *transmisorFake) EnviarDTE(_ context.Context, _ *entity.Empresa, envio EnvioDTE) (string, error) {
	f.envios = append(f.envios, envio)
	if f.errEnvio != nil {
		return "", f.errEnvio
	}
	return f.sello, nil
}

func (f *transmisorFake) InvalidarDTE(_ context.Context, _ *entity.Empresa, envio EnvioEvento) error {
	f.eventos = append(f.eventos, envio)
	return f.errEvento
}

// ejecutorFake registra los despachos del procesador de tareas.
type ejecutorFake struct {
	errEmitir    error
	errInvalidar error
	emitidas     []string
	invalidadas  []string
	motivos      []string
}

func (f *ejecutorFake) EmitirVenta(_ context.Context, ventaID string) error {
	f.emitidas = append(f.emitidas, ventaID)
	return f.errEmitir
}

func (f *ejecutorFake) InvalidarVenta(_ context.Context, ventaID, motivo string) error {
	f.invalidadas = append(f.invalidadas, ventaID)
	f.motivos = append(f.motivos, motivo)
	return f.errInvalidar
}
