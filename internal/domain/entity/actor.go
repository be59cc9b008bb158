package entity

// Actor es el descriptor opaco de identidad que el caller suministra.
// El núcleo nunca lo autentica: solo lo registra en AuditEntry y como
// responsable de la unidad.
type Actor struct {
	Name  string
	Email string
	Role  string
}
