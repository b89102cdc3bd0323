package builder

import "strings"

// esValorVacio reporta si un valor debe omitirse del DTE: nil o string
// vacío/solo espacios.
func esValorVacio(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// mantener decide si un campo vacío en la ruta dada se conserva como null:
// cuando la clave está en la lista, es prefijo de una ruta de la lista, o es
// sufijo de una (ej. "referencia" dentro de un elemento de "pagos" se
// conserva por "resumen.pagos.referencia").
func mantener(clave string, requeridos []string) bool {
	for _, ruta := range requeridos {
		if ruta == clave ||
			strings.HasPrefix(ruta, clave+".") ||
			strings.HasSuffix(ruta, "."+clave) {
			return true
		}
	}
	return false
}

// limpiarNulos elimina recursivamente claves con valor nulo o vacío.
// Regla del esquema MH: si un campo opcional es null o "", la llave no debe
// viajar. Los campos listados en requeridos se conservan como null; las
// listas vacías listadas en requeridos se conservan como [] (MH exige
// tributos:[] en ítems exentos de CCF/NC/ND). Mapas que quedan vacíos se
// eliminan.
func limpiarNulos(m map[string]any, requeridos []string) map[string]any {
	resultado := make(map[string]any, len(m))
	for clave, valor := range m {
		if esValorVacio(valor) {
			if mantener(clave, requeridos) {
				resultado[clave] = nil
			}
			continue
		}
		switch v := valor.(type) {
		case map[string]any:
			hijos := make([]string, 0, len(requeridos))
			for _, ruta := range requeridos {
				if resto, ok := strings.CutPrefix(ruta, clave+"."); ok {
					hijos = append(hijos, resto)
				}
			}
			limpio := limpiarNulos(v, hijos)
			if len(limpio) > 0 {
				resultado[clave] = limpio
			}
		case []any:
			lista := make([]any, 0, len(v))
			for _, elem := range v {
				if elem == nil {
					continue
				}
				if sub, ok := elem.(map[string]any); ok {
					lista = append(lista, limpiarNulos(sub, requeridos))
				} else {
					lista = append(lista, elem)
				}
			}
			if len(lista) > 0 || mantener(clave, requeridos) {
				resultado[clave] = lista
			}
		case []map[string]any:
			lista := make([]any, 0, len(v))
			for _, sub := range v {
				lista = append(lista, limpiarNulos(sub, requeridos))
			}
			if len(lista) > 0 || mantener(clave, requeridos) {
				resultado[clave] = lista
			}
		case []string:
			if len(v) > 0 || mantener(clave, requeridos) {
				resultado[clave] = v
			}
		default:
			resultado[clave] = valor
		}
	}
	return resultado
}
