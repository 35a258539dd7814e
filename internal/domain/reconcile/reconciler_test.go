package reconcile_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/notascan-api/internal/domain"
	"github.com/jhoicas/notascan-api/internal/domain/entity"
	"github.com/jhoicas/notascan-api/internal/domain/reconcile"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// draftWith arma un borrador con líneas (cantidad, precio) y total declarado.
func draftWith(total string, lines ...[2]string) entity.InvoiceDraft {
	d := entity.InvoiceDraft{DeclaredTotal: dec(total)}
	for _, l := range lines {
		q, p := dec(l[0]), dec(l[1])
		d.Items = append(d.Items, entity.LineItem{
			Description: "item",
			Quantity:    q,
			Unit:        "UN",
			UnitPrice:   p,
			LineTotal:   reconcile.LineTotal(q, p),
		})
	}
	return d
}

// ── UpdateItem ────────────────────────────────────────────────────────────────

func TestUpdateItem_CantidadYPrecioRecalculanLinea(t *testing.T) {
	d := draftWith("10.00", [2]string{"2", "5.00"})

	d, err := reconcile.UpdateItem(d, 0, reconcile.EditQuantity{Raw: "1,255"})
	require.NoError(t, err)
	assert.True(t, d.Items[0].LineTotal.Equal(dec("6.28")), "1.255 × 5.00 = 6.275 -> 6.28, got %s", d.Items[0].LineTotal)

	d, err = reconcile.UpdateItem(d, 0, reconcile.EditUnitPrice{Raw: "3.333"})
	require.NoError(t, err)
	it := d.Items[0]
	assert.True(t, it.LineTotal.Equal(it.Quantity.Mul(it.UnitPrice).Round(2)))
	assert.True(t, d.DeclaredTotal.Equal(reconcile.ItemsSum(d)))
}

func TestUpdateItem_TotalSiempreEsSumaDeLineas(t *testing.T) {
	d := draftWith("99.00", [2]string{"1", "10"}, [2]string{"2", "2.50"})
	edits := []reconcile.ItemEdit{
		reconcile.EditQuantity{Raw: "3"},
		reconcile.EditUnitPrice{Raw: "7,10"},
		reconcile.EditDescription{Value: "Arroz"},
		reconcile.EditCategory{Value: "Mercado"},
	}
	for _, e := range edits {
		var err error
		d, err = reconcile.UpdateItem(d, 1, e)
		require.NoError(t, err)
		assert.True(t, d.DeclaredTotal.Equal(reconcile.ItemsSum(d)), "edit %T", e)
		_, mismatch := reconcile.Mismatch(d)
		assert.False(t, mismatch)
	}
}

func TestUpdateItem_OverrideDeTotalDeLinea(t *testing.T) {
	d := draftWith("10.00", [2]string{"2", "5.00"}, [2]string{"1", "1.00"})

	d, err := reconcile.UpdateItem(d, 0, reconcile.EditLineTotal{Raw: "9,50"})
	require.NoError(t, err)
	assert.True(t, d.Items[0].LineTotal.Equal(dec("9.50")), "el override no se recalcula")
	assert.True(t, d.Items[0].Quantity.Equal(dec("2")))
	assert.True(t, d.DeclaredTotal.Equal(dec("10.50")), "el total usa el valor sobrescrito")
}

func TestUpdateItem_DescripcionNormalizada(t *testing.T) {
	norm := "ARROZ TIPO 1 5KG"
	d := draftWith("5", [2]string{"1", "5"})
	d.Items[0].NormalizedDescription = &norm

	out, err := reconcile.UpdateItem(d, 0, reconcile.EditDescription{Value: "Arroz 5kg"})
	require.NoError(t, err)
	require.NotNil(t, out.Items[0].NormalizedDescription)
	assert.Equal(t, "Arroz 5kg", *out.Items[0].NormalizedDescription)
	assert.Equal(t, "Arroz 5kg", out.Items[0].Description)
	assert.Equal(t, "ARROZ TIPO 1 5KG", norm, "el borrador original no se modifica")

	plain := draftWith("5", [2]string{"1", "5"})
	out, err = reconcile.UpdateItem(plain, 0, reconcile.EditDescription{Value: "Feijão"})
	require.NoError(t, err)
	assert.Nil(t, out.Items[0].NormalizedDescription)
}

func TestUpdateItem_CategoriaLimpiaSubcategoria(t *testing.T) {
	d := draftWith("5", [2]string{"1", "5"})
	d, _ = reconcile.UpdateItem(d, 0, reconcile.EditSubcategory{Value: "Grãos"})
	assert.Empty(t, d.Items[0].Subcategory, "sin categoría la subcategoría se ignora")

	d, _ = reconcile.UpdateItem(d, 0, reconcile.EditCategory{Value: "Alimentos"})
	d, _ = reconcile.UpdateItem(d, 0, reconcile.EditSubcategory{Value: "Grãos"})
	assert.Equal(t, "Grãos", d.Items[0].Subcategory)

	d, _ = reconcile.UpdateItem(d, 0, reconcile.EditCategory{Value: "Limpeza"})
	assert.Equal(t, "Limpeza", d.Items[0].Category)
	assert.Empty(t, d.Items[0].Subcategory)
}

func TestUpdateItem_EntradaNumericaPermisiva(t *testing.T) {
	d := draftWith("5", [2]string{"1", "5"})
	d, err := reconcile.UpdateItem(d, 0, reconcile.EditQuantity{Raw: "abc"})
	require.NoError(t, err)
	assert.True(t, d.Items[0].Quantity.IsZero())
	assert.True(t, d.Items[0].LineTotal.IsZero())

	d, _ = reconcile.UpdateItem(d, 0, reconcile.EditQuantity{Raw: "-2"})
	assert.True(t, d.Items[0].Quantity.IsZero(), "cantidad negativa se lleva a 0")
}

func TestUpdateItem_IndiceInvalido(t *testing.T) {
	d := draftWith("5", [2]string{"1", "5"})
	_, err := reconcile.UpdateItem(d, 3, reconcile.EditCode{Value: "x"})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	_, err = reconcile.UpdateItem(d, 0, nil)
	assert.ErrorIs(t, err, domain.ErrUnknownField)
}

func TestParseItemEdit(t *testing.T) {
	e, err := reconcile.ParseItemEdit("unit_price", "2,5")
	require.NoError(t, err)
	assert.Equal(t, reconcile.EditUnitPrice{Raw: "2,5"}, e)

	e, err = reconcile.ParseItemEdit("total_price", "3")
	require.NoError(t, err)
	assert.Equal(t, reconcile.EditLineTotal{Raw: "3"}, e)

	_, err = reconcile.ParseItemEdit("lineTotal[0]", "3")
	assert.ErrorIs(t, err, domain.ErrUnknownField)
}

// ── Add / Remove ──────────────────────────────────────────────────────────────

func TestAddItem(t *testing.T) {
	d := draftWith("10", [2]string{"2", "5"})
	d = reconcile.AddItem(d)
	require.Len(t, d.Items, 2)
	nuevo := d.Items[1]
	assert.True(t, nuevo.Quantity.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "UN", nuevo.Unit)
	assert.True(t, nuevo.UnitPrice.IsZero())
	assert.True(t, nuevo.LineTotal.IsZero())
	assert.True(t, d.DeclaredTotal.Equal(dec("10")))
}

func TestRemoveItem_MinimoUnaLinea(t *testing.T) {
	d := draftWith("10", [2]string{"2", "5"})
	out, err := reconcile.RemoveItem(d, 0)
	require.NoError(t, err)
	assert.Len(t, out.Items, 1, "la última línea no se elimina")
	assert.True(t, out.DeclaredTotal.Equal(dec("10")))
}

func TestRemoveItem_RecalculaTotal(t *testing.T) {
	d := draftWith("12", [2]string{"2", "5"}, [2]string{"1", "2"})
	out, err := reconcile.RemoveItem(d, 0)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.True(t, out.DeclaredTotal.Equal(dec("2")))
	assert.Len(t, d.Items, 2, "el original conserva sus líneas")

	_, err = reconcile.RemoveItem(d, -1)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestEnsureItems(t *testing.T) {
	d := reconcile.EnsureItems(entity.InvoiceDraft{DeclaredTotal: dec("7")})
	require.Len(t, d.Items, 1)
	assert.True(t, d.DeclaredTotal.Equal(dec("7")))
}

// ── Diferencia total vs. líneas ───────────────────────────────────────────────

func TestMismatch_Tolerancia(t *testing.T) {
	cases := []struct {
		total string
		want  bool
	}{
		{"10.00", false},
		{"10.01", false},
		{"9.99", false},
		{"10.02", true},
		{"9.98", true},
	}
	for _, tc := range cases {
		d := draftWith(tc.total, [2]string{"2", "5.00"})
		_, got := reconcile.Mismatch(d)
		assert.Equal(t, tc.want, got, "total %s", tc.total)
	}
}

func TestUseItemsSumAsTotal_Escenario(t *testing.T) {
	d := draftWith("11.00", [2]string{"2", "5.00"})
	diff, mismatch := reconcile.Mismatch(d)
	assert.True(t, mismatch)
	assert.True(t, diff.Equal(dec("-1.00")))

	d = reconcile.UseItemsSumAsTotal(d)
	assert.True(t, d.DeclaredTotal.Equal(dec("10.00")))
	_, mismatch = reconcile.Mismatch(d)
	assert.False(t, mismatch)
}

// ── ParseAmount ───────────────────────────────────────────────────────────────

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"":            "0",
		"abc":         "0",
		"10":          "10",
		"10,5":        "10.5",
		"10.5":        "10.5",
		"1.234,56":    "1234.56",
		"1,234.56":    "1234.56",
		"1.234.567,8": "1234567.8",
		"1,5kg":       "1.5",
		"12kg":        "12",
		" 3. ":        "3",
		".5":          "0.5",
		"-4":          "-4",
	}
	for in, want := range cases {
		assert.True(t, reconcile.ParseAmount(in).Equal(dec(want)), "ParseAmount(%q) = %s", in, reconcile.ParseAmount(in))
	}
	assert.True(t, reconcile.ParseQuantity("0,12345").Equal(dec("0.123")))
}
