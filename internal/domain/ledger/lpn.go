package ledger

import "regexp"

// Formato de un LPN: prefijo corto de letras (con guión opcional) seguido de
// al menos cuatro dígitos. Ejemplos: NZ-1001, NZ000123.
var lpnPattern = regexp.MustCompile(`^[A-Z]{1,5}-?\d{4,}$`)

// WellFormedLPN indica si un identificador suministrado externamente tiene
// forma de LPN (tras NormalizeID). No garantiza que no exista ya: la
// colisión se verifica contra el store antes de confirmar.
func WellFormedLPN(id string) bool {
	return lpnPattern.MatchString(NormalizeID(id))
}
