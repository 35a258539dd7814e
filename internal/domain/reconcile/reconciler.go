// Package reconcile mantiene coherentes las líneas de una nota y su total declarado.
// Todas las operaciones son transformaciones puras: reciben un borrador y devuelven
// uno nuevo sin tocar el original.
package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/notascan-api/internal/domain"
	"github.com/jhoicas/notascan-api/internal/domain/entity"
)

// MismatchTolerance diferencia máxima (en reales) entre la suma de ítems y el total declarado.
var MismatchTolerance = decimal.New(1, -2)

// UpdateItem aplica la edición a la línea index. Cantidad y precio recalculan el total
// de la línea; un override de total_price se respeta tal cual. En todos los casos el
// total declarado pasa a ser la suma de las líneas.
func UpdateItem(d entity.InvoiceDraft, index int, edit ItemEdit) (entity.InvoiceDraft, error) {
	if index < 0 || index >= len(d.Items) {
		return d, fmt.Errorf("%w: índice %d", domain.ErrItemNotFound, index)
	}
	out := d.Clone()
	it := &out.Items[index]

	switch e := edit.(type) {
	case EditCode:
		it.Code = e.Value
	case EditDescription:
		it.Description = e.Value
		if it.NormalizedDescription != nil {
			v := e.Value
			it.NormalizedDescription = &v
		}
	case EditQuantity:
		it.Quantity = ParseQuantity(e.Raw)
		it.LineTotal = LineTotal(it.Quantity, it.UnitPrice)
	case EditUnit:
		it.Unit = e.Value
	case EditUnitPrice:
		it.UnitPrice = parseNonNegative(e.Raw)
		it.LineTotal = LineTotal(it.Quantity, it.UnitPrice)
	case EditLineTotal:
		it.LineTotal = ParseAmount(e.Raw).Round(2)
	case EditCategory:
		it.Category = e.Value
		it.Subcategory = ""
	case EditSubcategory:
		// sin categoría la subcategoría no tiene sentido
		if it.Category != "" {
			it.Subcategory = e.Value
		}
	default:
		return d, fmt.Errorf("%w: %T", domain.ErrUnknownField, edit)
	}

	out.DeclaredTotal = ItemsSum(out)
	return out, nil
}

// AddItem agrega al final una línea vacía (1 UN a 0,00).
func AddItem(d entity.InvoiceDraft) entity.InvoiceDraft {
	out := d.Clone()
	out.Items = append(out.Items, newItem())
	out.DeclaredTotal = ItemsSum(out)
	return out
}

// RemoveItem elimina la línea index. Con una sola línea no hace nada: la nota
// siempre conserva al menos un ítem.
func RemoveItem(d entity.InvoiceDraft, index int) (entity.InvoiceDraft, error) {
	if index < 0 || index >= len(d.Items) {
		return d, fmt.Errorf("%w: índice %d", domain.ErrItemNotFound, index)
	}
	out := d.Clone()
	if len(out.Items) <= 1 {
		return out, nil
	}
	out.Items = append(out.Items[:index], out.Items[index+1:]...)
	out.DeclaredTotal = ItemsSum(out)
	return out, nil
}

// UseItemsSumAsTotal acción explícita del aviso de diferencia: total := Σ líneas.
func UseItemsSumAsTotal(d entity.InvoiceDraft) entity.InvoiceDraft {
	out := d.Clone()
	out.DeclaredTotal = ItemsSum(out)
	return out
}

// EnsureItems garantiza al menos una línea al cargar. No toca el total declarado.
func EnsureItems(d entity.InvoiceDraft) entity.InvoiceDraft {
	out := d.Clone()
	if len(out.Items) == 0 {
		out.Items = append(out.Items, newItem())
	}
	return out
}

// ItemsSum Σ LineTotal.
func ItemsSum(d entity.InvoiceDraft) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range d.Items {
		sum = sum.Add(it.LineTotal)
	}
	return sum
}

// Mismatch devuelve (Σ líneas − total declarado) y si supera la tolerancia.
func Mismatch(d entity.InvoiceDraft) (decimal.Decimal, bool) {
	diff := ItemsSum(d).Sub(d.DeclaredTotal)
	return diff, diff.Abs().GreaterThan(MismatchTolerance)
}

// LineTotal quantity × unitPrice redondeado a centavos.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(2)
}

func newItem() entity.LineItem {
	return entity.LineItem{
		Quantity: decimal.NewFromInt(1),
		Unit:     entity.DefaultUnit,
	}
}
