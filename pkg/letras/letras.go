// Package letras convierte montos en dólares a su representación en letras
// para el campo totalLetras del resumen DTE ("CIENTO TRECE DOLARES CON 00/100 USD").
package letras

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var unidades = []string{
	"", "UNO", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE",
	"DIEZ", "ONCE", "DOCE", "TRECE", "CATORCE", "QUINCE", "DIECISEIS",
	"DIECISIETE", "DIECIOCHO", "DIECINUEVE", "VEINTE",
}

var decenas = []string{
	"", "", "VEINTI", "TREINTA", "CUARENTA", "CINCUENTA", "SESENTA",
	"SETENTA", "OCHENTA", "NOVENTA",
}

var centenas = []string{
	"", "CIENTO", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS", "QUINIENTOS",
	"SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS",
}

// Monto convierte un monto a letras en el formato que espera MH.
// La parte decimal siempre se expresa como fracción NN/100.
func Monto(m decimal.Decimal) string {
	m = m.Round(2)
	entero := m.IntPart()
	cents := m.Sub(decimal.NewFromInt(entero)).Mul(decimal.NewFromInt(100)).IntPart()
	if cents < 0 {
		cents = -cents
	}
	texto := "CERO"
	if entero != 0 {
		texto = Cardinal(entero)
	}
	return fmt.Sprintf("%s DOLARES CON %02d/100 USD", texto, cents)
}

// Cardinal convierte un entero no negativo a cardinal en español (mayúsculas).
func Cardinal(n int64) string {
	if n < 0 {
		n = -n
	}
	if n == 0 {
		return "CERO"
	}
	var partes []string
	if millones := n / 1_000_000; millones > 0 {
		if millones == 1 {
			partes = append(partes, "UN MILLON")
		} else {
			partes = append(partes, grupo(millones)+" MILLONES")
		}
		n %= 1_000_000
	}
	if miles := n / 1000; miles > 0 {
		if miles == 1 {
			partes = append(partes, "MIL")
		} else {
			partes = append(partes, grupo(miles)+" MIL")
		}
		n %= 1000
	}
	if n > 0 {
		partes = append(partes, grupo(n))
	}
	return strings.Join(partes, " ")
}

// grupo convierte 1..999.
func grupo(n int64) string {
	if n == 100 {
		return "CIEN"
	}
	var sb strings.Builder
	if c := n / 100; c > 0 {
		sb.WriteString(centenas[c])
		n %= 100
		if n > 0 {
			sb.WriteString(" ")
		}
	}
	switch {
	case n == 0:
	case n <= 20:
		sb.WriteString(unidades[n])
	case n < 30:
		sb.WriteString(decenas[2] + unidades[n%10])
	default:
		sb.WriteString(decenas[n/10])
		if u := n % 10; u > 0 {
			sb.WriteString(" Y " + unidades[u])
		}
	}
	return sb.String()
}
