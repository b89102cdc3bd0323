package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEsValorVacio(t *testing.T) {
	assert.True(t, esValorVacio(nil))
	assert.True(t, esValorVacio(""))
	assert.True(t, esValorVacio("   "))
	assert.False(t, esValorVacio("x"))
	assert.False(t, esValorVacio(0.0))
	assert.False(t, esValorVacio(false))
}

func TestMantener(t *testing.T) {
	requeridos := []string{"extension", "resumen.pagos.referencia", "cuerpoDocumento.tributos"}

	assert.True(t, mantener("extension", requeridos), "coincidencia exacta")
	assert.True(t, mantener("resumen", requeridos), "prefijo de una ruta")
	assert.True(t, mantener("referencia", requeridos), "sufijo dentro de lista")
	assert.True(t, mantener("tributos", requeridos), "sufijo dentro de cuerpo")
	assert.False(t, mantener("apendice", requeridos))
	assert.False(t, mantener("pagos", []string{"resumen.pagosx"}))
}

func TestLimpiarNulosEliminaVacios(t *testing.T) {
	entrada := map[string]any{
		"nombre":   "ACME",
		"telefono": "",
		"correo":   nil,
		"direccion": map[string]any{
			"complemento": "",
		},
	}
	limpio := limpiarNulos(entrada, nil)

	assert.Equal(t, map[string]any{"nombre": "ACME"}, limpio)
}

func TestLimpiarNulosConservaRequeridosComoNull(t *testing.T) {
	entrada := map[string]any{
		"extension": nil,
		"apendice":  nil,
	}
	limpio := limpiarNulos(entrada, []string{"extension"})

	assert.Contains(t, limpio, "extension")
	assert.Nil(t, limpio["extension"])
	assert.NotContains(t, limpio, "apendice")
}

func TestLimpiarNulosListasVacias(t *testing.T) {
	entrada := map[string]any{
		"tributos":        []string{},
		"otrosDocumentos": []any{},
	}
	limpio := limpiarNulos(entrada, []string{"cuerpoDocumento.tributos"})

	assert.Equal(t, []string{}, limpio["tributos"], "lista vacía requerida se conserva como []")
	assert.NotContains(t, limpio, "otrosDocumentos", "lista vacía no requerida se elimina")
}

func TestLimpiarNulosRecortaPrefijoEnHijos(t *testing.T) {
	entrada := map[string]any{
		"resumen": map[string]any{
			"totalPagar":         113.0,
			"numPagoElectronico": nil,
			"observaciones":      "",
		},
	}
	limpio := limpiarNulos(entrada, []string{"resumen.numPagoElectronico"})

	resumen := limpio["resumen"].(map[string]any)
	assert.Contains(t, resumen, "numPagoElectronico")
	assert.NotContains(t, resumen, "observaciones")
}

func TestLimpiarNulosElementosDeLista(t *testing.T) {
	entrada := map[string]any{
		"pagos": []map[string]any{{
			"codigo":     "01",
			"montoPago":  113.0,
			"referencia": nil,
			"plazo":      nil,
		}},
	}
	limpio := limpiarNulos(entrada, []string{"resumen.pagos.referencia"})

	pagos := limpio["pagos"].([]any)
	pago := pagos[0].(map[string]any)
	assert.Contains(t, pago, "referencia", "se conserva por sufijo de ruta")
	assert.NotContains(t, pago, "plazo")
}

func TestLimpiarNulosEliminaMapasVacios(t *testing.T) {
	entrada := map[string]any{
		"documentoRelacionado": map[string]any{"numeroDocumento": ""},
		"emisor":               map[string]any{"nombre": "ACME"},
	}
	limpio := limpiarNulos(entrada, nil)

	assert.NotContains(t, limpio, "documentoRelacionado")
	assert.Contains(t, limpio, "emisor")
}
