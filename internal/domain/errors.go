package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// La capa HTTP los traduce a códigos de estado; las capas internas los
// envuelven con fmt.Errorf("...: %w", err) para añadir contexto.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("identificador duplicado")
	ErrConflict          = errors.New("conflicto de versión: el registro fue modificado por otro proceso")
	ErrInsufficientStock = errors.New("existencia insuficiente")
)
