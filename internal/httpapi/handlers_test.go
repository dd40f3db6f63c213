package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mimipro/backend/internal/domain"
	"mimipro/backend/internal/service"
	"mimipro/backend/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager and
// real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded()
	svc := service.New(repo, nil)
	auth := NewAuthManager("test-secret-key", time.Hour, repo)

	return New(svc, auth, "*")
}

func loginAsAdmin(t *testing.T, api *API) string {
	t.Helper()

	body, _ := json.Marshal(domain.LoginRequest{Username: "admin", Password: "admin123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()

	api.Handler().ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("admin login failed, status %d (body: %s)", res.Code, res.Body.String())
	}

	var payload domain.LoginResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode login response failed: %v", err)
	}
	if payload.AccessToken == "" {
		t.Fatalf("expected access token in login response")
	}
	return payload.AccessToken
}

// doJSON sends an authorized JSON request through the full handler chain.
func doJSON(t *testing.T, api *API, token, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	api.Handler().ServeHTTP(res, req)
	return res
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	payload, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "wrongpassword",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleProducts_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleProducts_WithValidToken(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)

	res := doJSON(t, api, token, http.MethodGet, "/api/v1/products", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", res.Code, res.Body.String())
	}

	var body map[string]any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["products"] == nil {
		t.Fatalf("expected products key in response, got %v", body)
	}
}

func TestHandleDeliveries_SaveAndList(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)

	res := doJSON(t, api, token, http.MethodPost, "/api/v1/deliveries", domain.DeliverySaveRequest{
		CustomerName: "Corner Shop",
		Lines: []domain.DeliveryLineInput{{
			ProductID:        1,
			DeliveredCartons: 1,
			ReturnedPieces:   4,
			UnitPrice:        20,
		}},
		CashCounts: []domain.CashCountInput{{Note: 500, Qty: 1}, {Note: 50, Qty: 1}},
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", res.Code, res.Body.String())
	}

	var created struct {
		Delivery domain.DeliveryRecord `json:"delivery"`
	}
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode created delivery: %v", err)
	}
	if created.Delivery.ID == 0 || created.Delivery.SalesTotal != 400 || created.Delivery.NetTotal != -150 {
		t.Fatalf("unexpected delivery: %+v", created.Delivery)
	}

	listRes := doJSON(t, api, token, http.MethodGet, "/api/v1/deliveries", nil)
	if listRes.Code != http.StatusOK {
		t.Fatalf("list expected 200, got %d", listRes.Code)
	}
	var listed struct {
		Deliveries []domain.DeliveryRecord `json:"deliveries"`
	}
	if err := json.NewDecoder(listRes.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Deliveries) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(listed.Deliveries))
	}
}

func TestHandleDeliveryPreview_DoesNotPersist(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)

	res := doJSON(t, api, token, http.MethodPost, "/api/v1/deliveries/preview", domain.DeliverySaveRequest{
		CustomerName: "Corner Shop",
		Lines: []domain.DeliveryLineInput{{
			ProductID:        1,
			DeliveredCartons: 1,
			UnitPrice:        20,
		}},
	})
	if res.Code != http.StatusOK {
		t.Fatalf("preview expected 200, got %d (body: %s)", res.Code, res.Body.String())
	}

	var preview domain.DeliveryPreview
	if err := json.NewDecoder(res.Body).Decode(&preview); err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if preview.Totals.SalesTotal != 480 {
		t.Fatalf("expected sales 480, got %d", preview.Totals.SalesTotal)
	}

	listRes := doJSON(t, api, token, http.MethodGet, "/api/v1/deliveries", nil)
	var listed struct {
		Deliveries []domain.DeliveryRecord `json:"deliveries"`
	}
	if err := json.NewDecoder(listRes.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Deliveries) != 0 {
		t.Fatalf("preview must not persist, got %d records", len(listed.Deliveries))
	}
}

func TestHandleDelivery_SaveRejectsUnknownProduct(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)

	res := doJSON(t, api, token, http.MethodPost, "/api/v1/deliveries", domain.DeliverySaveRequest{
		CustomerName: "Corner Shop",
		Lines: []domain.DeliveryLineInput{{
			ProductID:        99,
			DeliveredCartons: 1,
			UnitPrice:        20,
		}},
	})
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d (body: %s)", res.Code, res.Body.String())
	}
}

func TestHandleStockRestock_UpdatesQuantity(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)

	res := doJSON(t, api, token, http.MethodPost, "/api/v1/stock/restock", domain.StockRestockRequest{
		ProductID: 1,
		Quantity:  30,
	})
	if res.Code != http.StatusOK {
		t.Fatalf("restock expected 200, got %d (body: %s)", res.Code, res.Body.String())
	}

	var body struct {
		Stock domain.StockRecord `json:"stock"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode restock response: %v", err)
	}
	if body.Stock.Quantity != 150 {
		t.Fatalf("expected quantity 150 after restock, got %d", body.Stock.Quantity)
	}

	syncRes := doJSON(t, api, token, http.MethodGet, "/api/v1/sync/status", nil)
	var pending struct {
		Pending []domain.SyncStatusRecord `json:"pending"`
	}
	if err := json.NewDecoder(syncRes.Body).Decode(&pending); err != nil {
		t.Fatalf("decode sync status: %v", err)
	}
	if len(pending.Pending) != 1 {
		t.Fatalf("expected 1 pending sync item, got %d", len(pending.Pending))
	}
}

func TestHandleStaffRole_ForbiddenOnAdminEndpoints(t *testing.T) {
	api := newTestAPI(t)
	adminToken := loginAsAdmin(t, api)

	res := doJSON(t, api, adminToken, http.MethodPost, "/api/v1/users/staff", StaffCreateRequest{
		Username: "delivery1",
		Password: "secret123",
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("create staff expected 201, got %d (body: %s)", res.Code, res.Body.String())
	}

	loginBody, _ := json.Marshal(domain.LoginRequest{Username: "delivery1", Password: "secret123"})
	loginReq := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(loginBody))
	loginReq.Header.Set("Content-Type", "application/json")
	loginRes := httptest.NewRecorder()
	api.Handler().ServeHTTP(loginRes, loginReq)
	if loginRes.Code != http.StatusOK {
		t.Fatalf("staff login failed: %d (body: %s)", loginRes.Code, loginRes.Body.String())
	}
	var staffLogin domain.LoginResponse
	if err := json.NewDecoder(loginRes.Body).Decode(&staffLogin); err != nil {
		t.Fatalf("decode staff login: %v", err)
	}

	// Staff can reach the operational endpoints.
	if res := doJSON(t, api, staffLogin.AccessToken, http.MethodGet, "/api/v1/stock", nil); res.Code != http.StatusOK {
		t.Fatalf("staff stock list expected 200, got %d", res.Code)
	}

	// Admin-only endpoints stay closed.
	if res := doJSON(t, api, staffLogin.AccessToken, http.MethodGet, "/api/v1/reports/dashboard", nil); res.Code != http.StatusForbidden {
		t.Fatalf("staff dashboard expected 403, got %d", res.Code)
	}
	if res := doJSON(t, api, staffLogin.AccessToken, http.MethodPost, "/api/v1/stock/adjust", domain.StockAdjustRequest{
		ProductID: 1, NewQuantity: 10, Reason: "count",
	}); res.Code != http.StatusForbidden {
		t.Fatalf("staff stock adjust expected 403, got %d", res.Code)
	}
}

func TestHandleEmployeesAndAttendance(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)

	res := doJSON(t, api, token, http.MethodPost, "/api/v1/employees", domain.EmployeeCreateRequest{
		Name:       "Sameh",
		Role:       domain.RoleDeliveryman,
		SalaryType: domain.SalaryTypeDaily,
		SalaryRate: 150,
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("create employee expected 201, got %d (body: %s)", res.Code, res.Body.String())
	}
	var created struct {
		Employee domain.Employee `json:"employee"`
	}
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode employee: %v", err)
	}

	day := time.Now().UTC().Format("2006-01-02")
	markRes := doJSON(t, api, token, http.MethodPost, "/api/v1/attendance", domain.AttendanceMarkRequest{
		EmployeeID: created.Employee.ID,
		Date:       day,
		Status:     domain.AttendancePresent,
	})
	if markRes.Code != http.StatusCreated {
		t.Fatalf("mark attendance expected 201, got %d (body: %s)", markRes.Code, markRes.Body.String())
	}

	// Same employee, same day is a conflict.
	dupRes := doJSON(t, api, token, http.MethodPost, "/api/v1/attendance", domain.AttendanceMarkRequest{
		EmployeeID: created.Employee.ID,
		Date:       day,
		Status:     domain.AttendanceAbsent,
	})
	if dupRes.Code != http.StatusConflict {
		t.Fatalf("duplicate attendance expected 409, got %d", dupRes.Code)
	}
}

func TestHandleDashboard_ReturnsSummary(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)

	if res := doJSON(t, api, token, http.MethodPost, "/api/v1/deliveries", domain.DeliverySaveRequest{
		CustomerName: "Corner Shop",
		Lines: []domain.DeliveryLineInput{{
			ProductID:        1,
			DeliveredCartons: 1,
			ReturnedPieces:   4,
			UnitPrice:        20,
		}},
	}); res.Code != http.StatusCreated {
		t.Fatalf("save delivery: %d", res.Code)
	}

	res := doJSON(t, api, token, http.MethodGet, "/api/v1/reports/dashboard", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("dashboard expected 200, got %d (body: %s)", res.Code, res.Body.String())
	}
	var summary domain.DashboardSummary
	if err := json.NewDecoder(res.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Deliveries != 1 || summary.SalesTotal != 400 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
