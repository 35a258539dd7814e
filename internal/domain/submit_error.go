package domain

import (
	"fmt"

	"github.com/jhoicas/notascan-api/internal/domain/entity"
)

// SubmitErrorKind clasificación cerrada de los errores de confirmar/actualizar.
type SubmitErrorKind int

const (
	// SubmitErrorUnclassified red, 5xx, cuerpo malformado o cualquier 4xx no reconocido.
	SubmitErrorUnclassified SubmitErrorKind = iota
	// SubmitErrorDuplicate 409: ya existe una nota con los mismos datos.
	SubmitErrorDuplicate
	// SubmitErrorInvalidTaxID 400 invalid_cnpj: el backend rechazó el CNPJ.
	SubmitErrorInvalidTaxID
)

func (k SubmitErrorKind) String() string {
	switch k {
	case SubmitErrorDuplicate:
		return "duplicate"
	case SubmitErrorInvalidTaxID:
		return "invalid_cnpj"
	default:
		return "unclassified"
	}
}

// SubmitError error normalizado en la frontera REST. La sesión solo mira Kind;
// la forma original del cuerpo (detail string u objeto) ya no existe aquí.
type SubmitError struct {
	Kind     SubmitErrorKind
	Status   int    // código HTTP (0 si no hubo respuesta)
	Message  string // mensaje estructurado del backend, si lo hubo
	Hint     string
	Existing *entity.ExistingInvoice // solo para SubmitErrorDuplicate
	Err      error                   // causa (transporte, decode)
}

func (e *SubmitError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("submit %s (HTTP %d): %s", e.Kind, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("submit %s (HTTP %d): %v", e.Kind, e.Status, e.Err)
	default:
		return fmt.Sprintf("submit %s (HTTP %d)", e.Kind, e.Status)
	}
}

func (e *SubmitError) Unwrap() error { return e.Err }

// LookupError fallo de la consulta de CNPJ (enriquecimiento).
type LookupError struct {
	Status  int
	Message string
	Hint    string
	Err     error
}

func (e *LookupError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("cnpj lookup (HTTP %d): %s", e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("cnpj lookup (HTTP %d): %v", e.Status, e.Err)
	default:
		return fmt.Sprintf("cnpj lookup (HTTP %d)", e.Status)
	}
}

func (e *LookupError) Unwrap() error { return e.Err }
