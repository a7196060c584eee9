package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-retail-backoffice/internal/model"
	"go-retail-backoffice/internal/repository"
	"go-retail-backoffice/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubOrderService returns canned results so the handler's status mapping
// can be exercised without repositories.
type stubOrderService struct {
	placeErr  error
	updateErr error
	cancelErr error
	getErr    error
	order     *model.Order
}

func (s *stubOrderService) PlaceOrder(req *service.PlaceOrderRequest) (*model.Order, error) {
	if s.placeErr != nil {
		return nil, s.placeErr
	}
	return s.order, nil
}

func (s *stubOrderService) UpdateOrder(id uuid.UUID, req *service.UpdateOrderRequest) (*model.Order, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.order, nil
}

func (s *stubOrderService) CancelOrder(id uuid.UUID) (*model.Order, error) {
	if s.cancelErr != nil {
		return nil, s.cancelErr
	}
	return s.order, nil
}

func (s *stubOrderService) GetOrder(id uuid.UUID) (*model.Order, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.order, nil
}

func (s *stubOrderService) ListOrders(f repository.OrderFilter) (*service.OrderPage, error) {
	return &service.OrderPage{Orders: []model.Order{}}, nil
}

func (s *stubOrderService) GetInvoice(id uuid.UUID) (*service.Invoice, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &service.Invoice{}, nil
}

func newOrderApp(svc service.OrderService) *fiber.App {
	app := fiber.New()
	h := NewOrderHandler(svc)
	app.Post("/orders", h.CreateOrder)
	app.Put("/orders/:id/cancel", h.CancelOrder)
	app.Get("/orders", h.GetOrders)
	app.Get("/orders/:id/invoice", h.GetInvoice)
	app.Put("/orders/:id", h.UpdateOrder)
	app.Get("/orders/:id", h.GetOrder)
	return app
}

func jsonReq(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCreateOrderStatusMapping(t *testing.T) {
	placed := &model.Order{Total: 150}
	cases := []struct {
		name       string
		placeErr   error
		wantStatus int
	}{
		{"created", nil, 201},
		{"validation", service.ErrValidation, 400},
		{"insufficient stock", &service.InsufficientStockError{Available: 1, Requested: 2, Product: "Runner", Size: "M"}, 400},
		{"size unavailable", &service.SizeUnavailableError{Size: "XS", Product: "Runner"}, 400},
		{"unknown product", service.ErrProductNotFound, 404},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newOrderApp(&stubOrderService{placeErr: tc.placeErr, order: placed})

			body := service.PlaceOrderRequest{Items: []service.OrderItemRequest{
				{Product: uuid.NewString(), Size: "M", Qty: 1, Price: 150},
			}}
			resp, err := app.Test(jsonReq(t, "POST", "/orders", body))
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}

func TestCreateOrderRejectsMalformedJSON(t *testing.T) {
	app := newOrderApp(&stubOrderService{})

	req := httptest.NewRequest("POST", "/orders", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestCancelOrderStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		target     string
		cancelErr  error
		wantStatus int
	}{
		{"cancelled", "/orders/" + uuid.NewString() + "/cancel", nil, 200},
		{"bad id", "/orders/nope/cancel", nil, 400},
		{"already cancelled", "/orders/" + uuid.NewString() + "/cancel", service.ErrAlreadyCancelled, 400},
		{"not found", "/orders/" + uuid.NewString() + "/cancel", service.ErrOrderNotFound, 404},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newOrderApp(&stubOrderService{cancelErr: tc.cancelErr, order: &model.Order{}})

			resp, err := app.Test(jsonReq(t, "PUT", tc.target, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}

func TestCancelOrderResponseBody(t *testing.T) {
	app := newOrderApp(&stubOrderService{order: &model.Order{PaymentStatus: model.PaymentCancelled}})

	resp, err := app.Test(jsonReq(t, "PUT", "/orders/"+uuid.NewString()+"/cancel", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body struct {
		Message string      `json:"message"`
		Order   model.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Order cancelled and inventory restored", body.Message)
	assert.Equal(t, model.PaymentCancelled, body.Order.PaymentStatus)
}

func TestUpdateOrderStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		target     string
		updateErr  error
		wantStatus int
	}{
		{"updated", "/orders/" + uuid.NewString(), nil, 200},
		{"bad id", "/orders/nope", nil, 400},
		{"not found", "/orders/" + uuid.NewString(), service.ErrOrderNotFound, 404},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newOrderApp(&stubOrderService{updateErr: tc.updateErr, order: &model.Order{}})

			resp, err := app.Test(jsonReq(t, "PUT", tc.target, fiber.Map{"discount": 10}))
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}

func TestGetInvoiceStatusMapping(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		app := newOrderApp(&stubOrderService{})
		resp, err := app.Test(httptest.NewRequest("GET", "/orders/"+uuid.NewString()+"/invoice", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})
	t.Run("not found", func(t *testing.T) {
		app := newOrderApp(&stubOrderService{getErr: service.ErrOrderNotFound})
		resp, err := app.Test(httptest.NewRequest("GET", "/orders/"+uuid.NewString()+"/invoice", nil))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})
}
