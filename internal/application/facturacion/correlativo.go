package facturacion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
	"github.com/jhoicas/Facturacion-api/internal/dte/builder"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

var _ builder.GeneradorControl = (*ServicioCorrelativos)(nil)

// tzElSalvador es la zona horaria fiscal (UTC-6, sin DST). El año del
// contador se toma en esta zona, no en la del servidor.
var tzElSalvador = time.FixedZone("America/El_Salvador", -6*3600)

// reintentosCorrelativo acota los reintentos cuando dos transacciones crean
// la fila del contador del año a la vez.
const reintentosCorrelativo = 3

// ServicioCorrelativos asigna números de control consecutivos por empresa,
// tipo de DTE y año. Cada asignación corre en su propia transacción con
// candado de fila, de modo que dos emisiones concurrentes nunca reciben el
// mismo número.
type ServicioCorrelativos struct {
	tx    TxRunner
	log   *logger.Logger
	reloj func() time.Time
}

// NewServicioCorrelativos construye el servicio.
func NewServicioCorrelativos(tx TxRunner, log *logger.Logger) *ServicioCorrelativos {
	return &ServicioCorrelativos{
		tx:    tx,
		log:   log,
		reloj: time.Now,
	}
}

// SiguienteNumeroControl incrementa el contador y devuelve el número con el
// formato DTE-TT-EEEEPPPP-NNNNNNNNNNNNNNN (31 caracteres). Si la fila del
// año aún no existe la crea; ante una colisión de unicidad reintenta hasta
// agotar reintentosCorrelativo y entonces devuelve domain.ErrConcurrencia.
func (s *ServicioCorrelativos) SiguienteNumeroControl(ctx context.Context, empresaID, tipoDTE, codEstable, codPunto string) (string, error) {
	anio := s.reloj().In(tzElSalvador).Year()
	estable := normalizarCodigoEmision(codEstable, "M001")
	punto := normalizarCodigoEmision(codPunto, "P001")

	var numero string
	for intento := 0; intento < reintentosCorrelativo; intento++ {
		err := s.tx.RunCorrelativo(ctx, func(repo repository.CorrelativoRepository) error {
			c, err := repo.GetForUpdate(ctx, empresaID, tipoDTE, anio)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				c = &entity.Correlativo{
					EmpresaID: empresaID,
					TipoDTE:   tipoDTE,
					Anio:      anio,
				}
				if err := repo.Create(ctx, c); err != nil {
					return err
				}
			case err != nil:
				return err
			}
			siguiente := c.UltimoNumero + 1
			numero = fmt.Sprintf("DTE-%s-%s%s-%015d", tipoDTE, estable, punto, siguiente)
			if len(numero) != 31 {
				return fmt.Errorf("%w: número de control malformado: %q", domain.ErrInvalidInput, numero)
			}
			return repo.UpdateUltimoNumero(ctx, c.ID, siguiente)
		})
		if err == nil {
			return numero, nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return "", fmt.Errorf("correlativos: %w", err)
		}
		s.log.Warn().
			Str("empresa_id", empresaID).
			Str("tipo_dte", tipoDTE).
			Int("anio", anio).
			Msg("colisión al crear el contador del año, reintentando")
	}
	return "", domain.ErrConcurrencia
}

// normalizarCodigoEmision lleva el código de establecimiento o punto de
// venta a los 4 caracteres que exige el número de control.
func normalizarCodigoEmision(codigo, defecto string) string {
	c := strings.ToUpper(strings.TrimSpace(codigo))
	if c == "" {
		c = defecto
	}
	if len(c) > 4 {
		c = c[:4]
	}
	for len(c) < 4 {
		c = "0" + c
	}
	return c
}
