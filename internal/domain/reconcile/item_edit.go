package reconcile

import (
	"fmt"

	"github.com/jhoicas/notascan-api/internal/domain"
)

// ItemEdit edición de un campo de una línea. Conjunto cerrado: solo las variantes
// de este paquete implementan la interfaz.
type ItemEdit interface {
	isItemEdit()
}

type (
	EditCode        struct{ Value string }
	EditDescription struct{ Value string }
	EditQuantity    struct{ Raw string } // texto tal como se tipeó
	EditUnit        struct{ Value string }
	EditUnitPrice   struct{ Raw string }
	EditLineTotal   struct{ Raw string } // override manual del total de la línea
	EditCategory    struct{ Value string }
	EditSubcategory struct{ Value string }
)

func (EditCode) isItemEdit()        {}
func (EditDescription) isItemEdit() {}
func (EditQuantity) isItemEdit()    {}
func (EditUnit) isItemEdit()        {}
func (EditUnitPrice) isItemEdit()   {}
func (EditLineTotal) isItemEdit()   {}
func (EditCategory) isItemEdit()    {}
func (EditSubcategory) isItemEdit() {}

// Nombres de campo en la API (mismos que el payload).
const (
	FieldCode        = "code"
	FieldDescription = "description"
	FieldQuantity    = "quantity"
	FieldUnit        = "unit"
	FieldUnitPrice   = "unit_price"
	FieldLineTotal   = "total_price"
	FieldCategory    = "category"
	FieldSubcategory = "subcategory"
)

// ParseItemEdit traduce un nombre de campo externo a su variante.
func ParseItemEdit(field, raw string) (ItemEdit, error) {
	switch field {
	case FieldCode:
		return EditCode{Value: raw}, nil
	case FieldDescription:
		return EditDescription{Value: raw}, nil
	case FieldQuantity:
		return EditQuantity{Raw: raw}, nil
	case FieldUnit:
		return EditUnit{Value: raw}, nil
	case FieldUnitPrice:
		return EditUnitPrice{Raw: raw}, nil
	case FieldLineTotal:
		return EditLineTotal{Raw: raw}, nil
	case FieldCategory:
		return EditCategory{Value: raw}, nil
	case FieldSubcategory:
		return EditSubcategory{Value: raw}, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownField, field)
}
