package inventory

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"starpos-backend/internal/models"
	"starpos-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRefs []models.Product

func (r staticRefs) ReferencingIngredient(id int64) []models.Product {
	var out []models.Product
	for _, p := range r {
		if p.UsesIngredient(id) {
			out = append(out, p)
		}
	}
	return out
}

func newTestApp(t *testing.T, refs ProductReferences) (*fiber.App, *fixture) {
	t.Helper()
	f := newFixture(t, storage.NewMemory())

	app := fiber.New()
	app.Get("/ingredients", ListIngredientsHandler(f.store, f.eval))
	app.Get("/ingredients/low-stock", LowStockHandler(f.store, f.eval))
	app.Post("/ingredients", CreateIngredientHandler(f.store, f.eval))
	app.Put("/ingredients/:id/quantity", UpdateQuantityHandler(f.store, f.eval))
	app.Post("/ingredients/:id/restock", RestockHandler(f.store, f.eval))
	app.Delete("/ingredients/:id", DeleteIngredientHandler(f.store, refs))
	return app, f
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestCreateIngredientHandlerStatusCodes(t *testing.T) {
	app, _ := newTestApp(t, staticRefs{})

	resp := doJSON(t, app, http.MethodPost, "/ingredients", `{"name":"Milk","quantity":10,"unit":"l","cost":50}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/ingredients", `{"name":"milk","quantity":5,"unit":"l","cost":55}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got IngredientResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 15.0, got.Quantity)
	assert.False(t, got.Low)

	resp = doJSON(t, app, http.MethodPost, "/ingredients", `{"name":"Milk","quantity":5,"unit":"cups","cost":1}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateQuantityHandler(t *testing.T) {
	app, f := newTestApp(t, staticRefs{})
	ing := milk(t, f)
	path := "/ingredients/" + itoa(ing.ID) + "/quantity"

	resp := doJSON(t, app, http.MethodPut, path, `{"quantity":1.5}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got IngredientResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.True(t, got.Low)
	assert.Equal(t, 10.0, got.InitialQuantity)

	resp = doJSON(t, app, http.MethodPut, path, `{}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, "/ingredients/999/quantity", `{"quantity":1}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/ingredients/low-stock", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var low []models.Ingredient
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&low))
	assert.Len(t, low, 1)
}

func TestDeleteIngredientHandlerReportsDanglingProducts(t *testing.T) {
	refs := staticRefs{}
	app, f := newTestApp(t, &refs)
	ing := milk(t, f)
	refs = append(refs, models.Product{ID: 7, Title: "Latte", Ingredients: []models.ProductIngredient{{IngredientID: ing.ID, Name: "Milk", QuantityPerUnit: 0.2, Unit: models.UnitLiter}}})

	resp := doJSON(t, app, http.MethodDelete, "/ingredients/"+itoa(ing.ID), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got DeleteIngredientResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, []int64{7}, got.DanglingProducts)
	assert.Equal(t, []string{"Latte"}, got.DanglingTitles)

	resp = doJSON(t, app, http.MethodDelete, "/ingredients/"+itoa(ing.ID), "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
