package letras_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Facturacion-api/pkg/letras"
)

func TestMonto(t *testing.T) {
	casos := []struct {
		monto    string
		esperado string
	}{
		{"0", "CERO DOLARES CON 00/100 USD"},
		{"0.50", "CERO DOLARES CON 50/100 USD"},
		{"1.00", "UNO DOLARES CON 00/100 USD"},
		{"21.13", "VEINTIUNO DOLARES CON 13/100 USD"},
		{"100.00", "CIEN DOLARES CON 00/100 USD"},
		{"113.00", "CIENTO TRECE DOLARES CON 00/100 USD"},
		{"531.45", "QUINIENTOS TREINTA Y UNO DOLARES CON 45/100 USD"},
		{"1000.00", "MIL DOLARES CON 00/100 USD"},
		{"1999.99", "MIL NOVECIENTOS NOVENTA Y NUEVE DOLARES CON 99/100 USD"},
		{"1000000.00", "UN MILLON DOLARES CON 00/100 USD"},
		{"2450300.07", "DOS MILLONES CUATROCIENTOS CINCUENTA MIL TRESCIENTOS DOLARES CON 07/100 USD"},
	}
	for _, c := range casos {
		m := decimal.RequireFromString(c.monto)
		assert.Equal(t, c.esperado, letras.Monto(m), "monto %s", c.monto)
	}
}

func TestCardinalCero(t *testing.T) {
	assert.Equal(t, "CERO", letras.Cardinal(0))
}
