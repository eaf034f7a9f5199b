package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"pagai-backend/config"
	"pagai-backend/models"
	"pagai-backend/store"
)

const testUser = "test-user"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.Load()
	os.Exit(m.Run())
}

// setupRouter wires a fresh in-memory store behind the real routes, with the
// auth middleware stubbed to a fixed user.
func setupRouter() (*gin.Engine, *store.MemoryStore) {
	mem := store.NewMemoryStore()
	Store = mem

	r := gin.New()
	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Set("user_id", testUser)
		c.Next()
	})

	api.GET("/debtors", GetDebtors)
	api.GET("/debtors/stream", StreamDebtors)
	api.POST("/debtors", CreateDebtor)
	api.GET("/debtors/:id", GetDebtor)
	api.DELETE("/debtors/:id", DeleteDebtor)
	api.POST("/debtors/:id/archive", ArchiveDebtor)
	api.POST("/debtors/:id/unarchive", UnarchiveDebtor)
	api.POST("/debtors/:id/payments", CreatePayment)
	api.DELETE("/debtors/:id/payments/:pid", DeletePayment)
	api.GET("/archived", GetArchivedDebtors)
	api.GET("/metrics", GetMetrics)
	api.GET("/report", DownloadReport)
	api.GET("/calendar/years", GetCalendarYears)
	api.GET("/calendar/:year/months", GetCalendarMonths)
	api.GET("/calendar/:year/:month", GetCalendarMonthDebtors)

	return r, mem
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid response body %q: %v", w.Body.String(), err)
	}
	return env
}

func TestCreateDebtorParsesHumanAmount(t *testing.T) {
	r, _ := setupRouter()

	w := do(t, r, http.MethodPost, "/api/debtors", `{"name":"  Maria  ","total":"1.234,56"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp models.DebtorResponse
	env := decode(t, w)
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1234.56 {
		t.Errorf("total = %v, want 1234.56", resp.Total)
	}
	if resp.Name != "Maria" {
		t.Errorf("name = %q, want trimmed %q", resp.Name, "Maria")
	}
	if resp.Balance.Remaining != 1234.56 || resp.Balance.Settled {
		t.Errorf("fresh debtor balance = %+v", resp.Balance)
	}
}

func TestCreateDebtorRejectsBadInput(t *testing.T) {
	r, _ := setupRouter()

	cases := []struct {
		name string
		body string
	}{
		{"unparseable amount", `{"name":"Ana","total":"abc"}`},
		{"multiple commas", `{"name":"Ana","total":"1,2,3"}`},
		{"negative", `{"name":"Ana","total":"-10,00"}`},
		{"blank name", `{"name":"   ","total":"100"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/debtors", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestPaymentLifecycle(t *testing.T) {
	r, _ := setupRouter()

	w := do(t, r, http.MethodPost, "/api/debtors", `{"name":"Carlos","total":"1.000,00"}`)
	var created models.DebtorResponse
	json.Unmarshal(decode(t, w).Data, &created)

	// invalid method is rejected
	w = do(t, r, http.MethodPost, "/api/debtors/"+created.ID+"/payments",
		`{"amount":"100","payment_method":"bitcoin"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown method: status = %d", w.Code)
	}

	// "other" requires the free-text detail
	w = do(t, r, http.MethodPost, "/api/debtors/"+created.ID+"/payments",
		`{"amount":"100","payment_method":"other"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("other without detail: status = %d", w.Code)
	}

	w = do(t, r, http.MethodPost, "/api/debtors/"+created.ID+"/payments",
		`{"amount":"300,50","payment_method":"pix","note":"primeira parcela"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create payment: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/debtors/"+created.ID, "")
	var detail models.DebtorDetailResponse
	json.Unmarshal(decode(t, w).Data, &detail)
	if detail.Balance.Paid != 300.50 || detail.Balance.Remaining != 699.50 {
		t.Fatalf("balance after payment = %+v", detail.Balance)
	}
	if len(detail.Payments) != 1 || detail.Payments[0].MethodLabel != "PIX" {
		t.Fatalf("payments = %+v", detail.Payments)
	}

	// deleting the payment restores the balance
	w = do(t, r, http.MethodDelete, "/api/debtors/"+created.ID+"/payments/"+detail.Payments[0].ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete payment: status = %d", w.Code)
	}
	w = do(t, r, http.MethodGet, "/api/debtors/"+created.ID, "")
	json.Unmarshal(decode(t, w).Data, &detail)
	if detail.Balance.Paid != 0 || len(detail.Payments) != 0 {
		t.Fatalf("after delete: %+v", detail)
	}

	// deleting it again is a stale reference
	w = do(t, r, http.MethodDelete, "/api/debtors/"+created.ID+"/payments/nope", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("stale payment delete: status = %d, want 404", w.Code)
	}
}

func TestArchiveAndDeleteVisibility(t *testing.T) {
	r, _ := setupRouter()

	w := do(t, r, http.MethodPost, "/api/debtors", `{"name":"Ana","total":"100"}`)
	var ana models.DebtorResponse
	json.Unmarshal(decode(t, w).Data, &ana)
	w = do(t, r, http.MethodPost, "/api/debtors", `{"name":"Bia","total":"200"}`)
	var bia models.DebtorResponse
	json.Unmarshal(decode(t, w).Data, &bia)

	if w := do(t, r, http.MethodPost, "/api/debtors/"+ana.ID+"/archive", ""); w.Code != http.StatusOK {
		t.Fatalf("archive: status = %d", w.Code)
	}

	var list []models.DebtorResponse
	json.Unmarshal(decode(t, do(t, r, http.MethodGet, "/api/debtors", "")).Data, &list)
	if len(list) != 1 || list[0].ID != bia.ID {
		t.Fatalf("active list after archive = %+v", list)
	}

	json.Unmarshal(decode(t, do(t, r, http.MethodGet, "/api/archived", "")).Data, &list)
	if len(list) != 1 || list[0].ID != ana.ID {
		t.Fatalf("archived list = %+v", list)
	}

	// archived debtors stay reachable in detail
	if w := do(t, r, http.MethodGet, "/api/debtors/"+ana.ID, ""); w.Code != http.StatusOK {
		t.Fatalf("archived detail: status = %d", w.Code)
	}

	if w := do(t, r, http.MethodPost, "/api/debtors/"+ana.ID+"/unarchive", ""); w.Code != http.StatusOK {
		t.Fatalf("unarchive: status = %d", w.Code)
	}
	json.Unmarshal(decode(t, do(t, r, http.MethodGet, "/api/debtors", "")).Data, &list)
	if len(list) != 2 {
		t.Fatalf("active list after unarchive = %+v", list)
	}

	// soft-deleted debtors vanish from every view and answer 404 in detail
	if w := do(t, r, http.MethodDelete, "/api/debtors/"+bia.ID, ""); w.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", w.Code)
	}
	json.Unmarshal(decode(t, do(t, r, http.MethodGet, "/api/debtors", "")).Data, &list)
	if len(list) != 1 {
		t.Fatalf("active list after delete = %+v", list)
	}
	if w := do(t, r, http.MethodGet, "/api/debtors/"+bia.ID, ""); w.Code != http.StatusNotFound {
		t.Errorf("deleted detail: status = %d, want 404", w.Code)
	}
	// payments against a deleted debtor are rejected
	if w := do(t, r, http.MethodPost, "/api/debtors/"+bia.ID+"/payments",
		`{"amount":"10","payment_method":"cash"}`); w.Code != http.StatusNotFound {
		t.Errorf("payment on deleted debtor: status = %d, want 404", w.Code)
	}
}

func TestPaymentSearchAndSort(t *testing.T) {
	r, _ := setupRouter()

	w := do(t, r, http.MethodPost, "/api/debtors", `{"name":"Davi","total":"1000"}`)
	var d models.DebtorResponse
	json.Unmarshal(decode(t, w).Data, &d)

	do(t, r, http.MethodPost, "/api/debtors/"+d.ID+"/payments",
		`{"amount":"10","payment_method":"pix","note":"Entrada","date":100}`)
	do(t, r, http.MethodPost, "/api/debtors/"+d.ID+"/payments",
		`{"amount":"20","payment_method":"cash","note":"parcela dois","date":200}`)

	var detail models.DebtorDetailResponse
	json.Unmarshal(decode(t, do(t, r, http.MethodGet, "/api/debtors/"+d.ID+"?sort=asc", "")).Data, &detail)
	if len(detail.Payments) != 2 || detail.Payments[0].Date != 100 {
		t.Fatalf("asc order = %+v", detail.Payments)
	}

	json.Unmarshal(decode(t, do(t, r, http.MethodGet, "/api/debtors/"+d.ID+"?q=ENTRada", "")).Data, &detail)
	if len(detail.Payments) != 1 || detail.Payments[0].Note != "Entrada" {
		t.Fatalf("note search = %+v", detail.Payments)
	}
	// search narrows the list but never the balance
	if detail.Balance.Paid != 30 {
		t.Errorf("balance under search = %+v", detail.Balance)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := setupRouter()

	w := do(t, r, http.MethodPost, "/api/debtors", `{"name":"Eva","total":"500"}`)
	var d models.DebtorResponse
	json.Unmarshal(decode(t, w).Data, &d)
	do(t, r, http.MethodPost, "/api/debtors/"+d.ID+"/payments", `{"amount":"200","payment_method":"pix"}`)

	var snap models.MetricsSnapshot
	json.Unmarshal(decode(t, do(t, r, http.MethodGet, "/api/metrics", "")).Data, &snap)
	if snap.TotalDebtors != 1 || snap.TotalOwed != 500 || snap.TotalPaid != 200 || snap.TotalPending != 300 {
		t.Fatalf("aggregate metrics = %+v", snap)
	}
	if len(snap.Received) != 1 || snap.Received[0].Amount != 200 {
		t.Fatalf("received ranking = %+v", snap.Received)
	}

	if w := do(t, r, http.MethodGet, "/api/metrics?mode=weekly", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad mode: status = %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/metrics?mode=monthly&month=03-2024", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad month: status = %d", w.Code)
	}
	// monthly with no month defaults to the current month, which contains
	// the payment created just now
	json.Unmarshal(decode(t, do(t, r, http.MethodGet, "/api/metrics?mode=monthly", "")).Data, &snap)
	if snap.TotalPaid != 200 {
		t.Fatalf("current-month metrics = %+v", snap)
	}
}

func TestReportDownload(t *testing.T) {
	r, _ := setupRouter()

	w := do(t, r, http.MethodPost, "/api/debtors", `{"name":"Gil","total":"150"}`)
	var d models.DebtorResponse
	json.Unmarshal(decode(t, w).Data, &d)
	do(t, r, http.MethodPost, "/api/debtors/"+d.ID+"/payments", `{"amount":"50","payment_method":"pix"}`)

	resp := do(t, r, http.MethodGet, "/api/report", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, "planilha-devedores.csv") {
		t.Errorf("content disposition = %q", cd)
	}
	body := resp.Body.String()
	if !strings.HasPrefix(body, "\uFEFF") {
		t.Error("missing BOM")
	}
	if !strings.Contains(body, "DEVEDOR;TOTAL DEVIDO") || !strings.Contains(body, `"Gil"`) {
		t.Errorf("unexpected body:\n%s", body)
	}
}

func TestStreamDebtors(t *testing.T) {
	r, mem := setupRouter()
	mem.CreateDebtor(reqCtx(), &models.Debtor{OwnerID: testUser, Name: "Livia", Total: 100, CreatedAt: 1})

	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/debtors/stream", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("content type = %q", ct)
	}

	// first event carries the current active-debtor view
	reader := bufio.NewReader(resp.Body)
	var event, data string
	deadline := time.AfterFunc(2*time.Second, cancel)
	for data == "" {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "event:"); ok {
			event = strings.TrimSpace(v)
		}
		if v, ok := strings.CutPrefix(line, "data:"); ok {
			data = strings.TrimSpace(v)
		}
	}
	deadline.Stop()
	if event != "debtors" {
		t.Errorf("event = %q, want debtors", event)
	}
	if !strings.Contains(data, "Livia") {
		t.Errorf("event payload missing debtor: %q", data)
	}

	// disconnecting tears the watcher and every nested subscription down
	cancel()
	waitUntil := time.Now().Add(2 * time.Second)
	for mem.NumSubscribers() != 0 && time.Now().Before(waitUntil) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := mem.NumSubscribers(); got != 0 {
		t.Errorf("subscribers after disconnect = %d, want 0", got)
	}
}

func reqCtx() context.Context { return context.Background() }

func timeInZone(t *testing.T, year int, month time.Month, day int) int64 {
	t.Helper()
	return time.Date(year, month, day, 12, 0, 0, 0, config.AppConfig.Timezone).UnixMilli()
}

func TestCalendarEndpoints(t *testing.T) {
	r, mem := setupRouter()

	// a debtor created at a fixed instant: 2024-03-15 in the configured zone
	at := timeInZone(t, 2024, 3, 15)
	mem.CreateDebtor(reqCtx(), &models.Debtor{OwnerID: testUser, Name: "Hugo", Total: 10, CreatedAt: at})

	var years []int
	json.Unmarshal(decode(t, do(t, r, http.MethodGet, "/api/calendar/years", "")).Data, &years)
	if len(years) != 1 || years[0] != 2024 {
		t.Fatalf("years = %v", years)
	}

	var months []int
	json.Unmarshal(decode(t, do(t, r, http.MethodGet, "/api/calendar/2024/months", "")).Data, &months)
	if len(months) != 1 || months[0] != 3 {
		t.Fatalf("months = %v", months)
	}

	var list []models.DebtorResponse
	json.Unmarshal(decode(t, do(t, r, http.MethodGet, "/api/calendar/2024/3", "")).Data, &list)
	if len(list) != 1 || list[0].Name != "Hugo" {
		t.Fatalf("month debtors = %+v", list)
	}

	if w := do(t, r, http.MethodGet, "/api/calendar/2024/13", ""); w.Code != http.StatusBadRequest {
		t.Errorf("month 13: status = %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/calendar/abc/months", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad year: status = %d", w.Code)
	}
}
