package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"starpos-backend/internal/inventory"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutHandlers(t *testing.T) {
	e, s := newShop(t, inventory.PolicyAllow)

	app := fiber.New()
	app.Post("/checkout/quote", QuoteHandler(e))
	app.Post("/checkout/complete", CompleteHandler(e))

	post := func(path, body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}
	id := strconv.FormatInt(s.latte.ID, 10)

	resp := post("/checkout/quote", `{"lines":[{"productId":`+id+`,"qty":2}]}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var q Quote
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&q))
	assert.Equal(t, 240.0, q.TotalAmount)

	resp = post("/checkout/complete", `{"lines":[{"productId":`+id+`,"qty":2}],"paymentMethod":"Cash","amountReceived":200}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = post("/checkout/complete", `{"lines":[{"productId":`+id+`,"qty":2}],"paymentMethod":"Card"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = post("/checkout/complete", `{"receiptNo":"`+q.ReceiptNo+`","lines":[{"productId":`+id+`,"qty":2}],"paymentMethod":"Cash","amountReceived":250}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var res CompletionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, "000001", res.Transaction.ReceiptNo)
	assert.Equal(t, 10.0, res.Transaction.Change)

	resp = post("/checkout/complete", `{"receiptNo":"000001","lines":[{"productId":`+id+`,"qty":1}],"paymentMethod":"GCash"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	require.NoError(t, s.ledger.Delete(context.Background(), res.Transaction.ID))
	resp = post("/checkout/complete", `{"receiptNo":"000001","lines":[{"productId":`+id+`,"qty":1}],"paymentMethod":"GCash"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode, "deleted receipt numbers stay used")
}
