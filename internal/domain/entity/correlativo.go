package entity

import "time"

// Correlativo lleva el consecutivo de números de control por empresa,
// tipo de DTE y año. Unicidad en (EmpresaID, TipoDTE, Anio); el contador
// arranca en 0 y UltimoNumero es el último valor ya asignado.
type Correlativo struct {
	ID           string
	EmpresaID    string
	TipoDTE      string
	Anio         int
	UltimoNumero int64
	UpdatedAt    time.Time
}
