package facturacion

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturacion-api/internal/domain"
)

func servicioCorrelativosPrueba(repo *correlativoRepoFake) *ServicioCorrelativos {
	s := NewServicioCorrelativos(&txFake{correlativos: repo}, loggerPrueba())
	s.reloj = func() time.Time {
		return time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	}
	return s
}

func TestSiguienteNumeroControlFormato(t *testing.T) {
	s := servicioCorrelativosPrueba(nuevoCorrelativoRepoFake())

	numero, err := s.SiguienteNumeroControl(context.Background(), "emp-1", "01", "M001", "P001")
	require.NoError(t, err)
	assert.Equal(t, "DTE-01-M001P001-000000000000001", numero)
	assert.Len(t, numero, 31)

	numero, err = s.SiguienteNumeroControl(context.Background(), "emp-1", "01", "M001", "P001")
	require.NoError(t, err)
	assert.Equal(t, "DTE-01-M001P001-000000000000002", numero)
}

func TestSiguienteNumeroControlNormalizaCodigos(t *testing.T) {
	s := servicioCorrelativosPrueba(nuevoCorrelativoRepoFake())

	numero, err := s.SiguienteNumeroControl(context.Background(), "emp-1", "03", "m1", "")
	require.NoError(t, err)
	assert.Equal(t, "DTE-03-00M1P001-000000000000001", numero)
	assert.Len(t, numero, 31)
}

func TestSiguienteNumeroControlContadoresIndependientes(t *testing.T) {
	s := servicioCorrelativosPrueba(nuevoCorrelativoRepoFake())

	_, err := s.SiguienteNumeroControl(context.Background(), "emp-1", "01", "M001", "P001")
	require.NoError(t, err)

	// otro tipo de DTE y otra empresa arrancan sus propios contadores
	numero, err := s.SiguienteNumeroControl(context.Background(), "emp-1", "03", "M001", "P001")
	require.NoError(t, err)
	assert.Equal(t, "DTE-03-M001P001-000000000000001", numero)

	numero, err = s.SiguienteNumeroControl(context.Background(), "emp-2", "01", "M001", "P001")
	require.NoError(t, err)
	assert.Equal(t, "DTE-01-M001P001-000000000000001", numero)
}

func TestSiguienteNumeroControlConcurrente(t *testing.T) {
	s := servicioCorrelativosPrueba(nuevoCorrelativoRepoFake())

	const n = 40
	numeros := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			numero, err := s.SiguienteNumeroControl(context.Background(), "emp-1", "01", "M001", "P001")
			assert.NoError(t, err)
			numeros <- numero
		}()
	}
	wg.Wait()
	close(numeros)

	vistos := make(map[string]bool, n)
	for numero := range numeros {
		require.Len(t, numero, 31)
		assert.False(t, vistos[numero], "número de control repetido: %s", numero)
		vistos[numero] = true
	}
	require.Len(t, vistos, n)

	// sin huecos: se emitieron exactamente los correlativos 1..n
	for i := 1; i <= n; i++ {
		assert.Contains(t, vistos, fmt.Sprintf("DTE-01-M001P001-%015d", i))
	}
}

func TestSiguienteNumeroControlReiniciaPorAnio(t *testing.T) {
	repo := nuevoCorrelativoRepoFake()
	s := servicioCorrelativosPrueba(repo)

	numero, err := s.SiguienteNumeroControl(context.Background(), "emp-1", "01", "M001", "P001")
	require.NoError(t, err)
	assert.Equal(t, "DTE-01-M001P001-000000000000001", numero)

	s.reloj = func() time.Time {
		return time.Date(2027, 1, 1, 10, 0, 0, 0, time.UTC)
	}
	numero, err = s.SiguienteNumeroControl(context.Background(), "emp-1", "01", "M001", "P001")
	require.NoError(t, err)
	assert.Equal(t, "DTE-01-M001P001-000000000000001", numero)
	assert.Len(t, repo.filas, 2)
}

func TestSiguienteNumeroControlReintentaTrasColision(t *testing.T) {
	repo := nuevoCorrelativoRepoFake()
	repo.fallosCreate = 2
	s := servicioCorrelativosPrueba(repo)

	numero, err := s.SiguienteNumeroControl(context.Background(), "emp-1", "01", "M001", "P001")
	require.NoError(t, err)
	assert.Equal(t, "DTE-01-M001P001-000000000000001", numero)
}

func TestSiguienteNumeroControlAgotaReintentos(t *testing.T) {
	repo := nuevoCorrelativoRepoFake()
	repo.fallosCreate = 10
	s := servicioCorrelativosPrueba(repo)

	_, err := s.SiguienteNumeroControl(context.Background(), "emp-1", "01", "M001", "P001")
	assert.ErrorIs(t, err, domain.ErrConcurrencia)
}
