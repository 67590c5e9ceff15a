package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/droplog/internal/config"
	"github.com/droplog/internal/db"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupHandlerTest(t *testing.T) (*gin.Engine, *API, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := gdb.AutoMigrate(&db.WaterEntry{}, &db.Metadata{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	db.DB = gdb

	cfg := config.AppConfig{
		DefaultGoalML: 2000,
		ReminderDelay: time.Millisecond,
		StaticDir:     t.TempDir(),
	}
	api := NewAPI(gdb, cfg)

	r := gin.New()
	r.POST("/add-entry/", api.AddEntry)
	r.GET("/history/:user_id", api.GetHistory)
	r.GET("/today-total/:user_id", api.GetTodayTotal)
	r.POST("/ask-agent/", api.AskAgent)
	r.POST("/reset/", api.Reset)

	return r, api, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func getJSON(t *testing.T, r http.Handler, path string, dst interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if dst != nil {
		if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
			t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
		}
	}
	return rr
}

func TestAddEntryEchoesStoredRecord(t *testing.T) {
	r, _, cleanup := setupHandlerTest(t)
	defer cleanup()

	rr := postJSON(t, r, "/add-entry/", map[string]interface{}{"user_id": "bob", "amount_ml": 300})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "success" || resp["user_id"] != "bob" {
		t.Fatalf("unexpected payload %v", resp)
	}
	if resp["amount_ml"].(float64) != 300 {
		t.Fatalf("expected echoed amount, got %v", resp["amount_ml"])
	}
	if resp["timestamp"] == "" || resp["timestamp"] == nil {
		t.Fatal("expected store-assigned timestamp in response")
	}
}

func TestAddEntrySchedulesReminder(t *testing.T) {
	r, api, cleanup := setupHandlerTest(t)
	defer cleanup()

	fired := make(chan string, 1)
	api.Reminders().SetNotifier(func(userID string) {
		fired <- userID
	})

	rr := postJSON(t, r, "/add-entry/", map[string]interface{}{"user_id": "bob", "amount_ml": 300})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	select {
	case userID := <-fired:
		if userID != "bob" {
			t.Fatalf("expected reminder for bob, got %s", userID)
		}
	case <-time.After(time.Second):
		t.Fatal("expected write to schedule a reminder")
	}
}

func TestAddEntryRejectsBadAmount(t *testing.T) {
	r, _, cleanup := setupHandlerTest(t)
	defer cleanup()

	for _, amount := range []int{0, -100} {
		rr := postJSON(t, r, "/add-entry/", map[string]interface{}{"user_id": "bob", "amount_ml": amount})
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for amount %d, got %d", amount, rr.Code)
		}

		var resp map[string]interface{}
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["status"] != "error" || resp["message"] == "" {
			t.Fatalf("expected error payload shape, got %v", resp)
		}
	}

	var history []map[string]interface{}
	getJSON(t, r, "/history/bob", &history)
	if len(history) != 0 {
		t.Fatalf("expected store unchanged after rejected writes, got %d entries", len(history))
	}
}

func TestHistoryAndTodayTotalEndToEnd(t *testing.T) {
	r, _, cleanup := setupHandlerTest(t)
	defer cleanup()

	postJSON(t, r, "/add-entry/", map[string]interface{}{"user_id": "bob", "amount_ml": 300})
	postJSON(t, r, "/add-entry/", map[string]interface{}{"user_id": "bob", "amount_ml": 400})

	var history []map[string]interface{}
	rr := getJSON(t, r, "/history/bob", &history)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[0]["amount_ml"].(float64) != 300 || history[1]["amount_ml"].(float64) != 400 {
		t.Fatalf("expected ascending insertion order, got %v", history)
	}
	if history[0]["timestamp"].(string) > history[1]["timestamp"].(string) {
		t.Fatalf("expected non-decreasing timestamps, got %v", history)
	}

	var total map[string]interface{}
	getJSON(t, r, "/today-total/bob", &total)
	if total["user_id"] != "bob" {
		t.Fatalf("expected user echo, got %v", total)
	}
	if total["today_total_ml"].(float64) != 700 {
		t.Fatalf("expected total 700, got %v", total["today_total_ml"])
	}
}

func TestResetWithAndWithoutUser(t *testing.T) {
	r, _, cleanup := setupHandlerTest(t)
	defer cleanup()

	postJSON(t, r, "/add-entry/", map[string]interface{}{"user_id": "alice", "amount_ml": 250})
	postJSON(t, r, "/add-entry/", map[string]interface{}{"user_id": "bob", "amount_ml": 500})

	rr := postJSON(t, r, "/reset/", map[string]interface{}{"user_id": "alice"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "success" {
		t.Fatalf("expected success, got %v", resp)
	}

	var total map[string]interface{}
	getJSON(t, r, "/today-total/alice", &total)
	if total["today_total_ml"].(float64) != 0 {
		t.Fatalf("expected alice cleared, got %v", total["today_total_ml"])
	}
	getJSON(t, r, "/today-total/bob", &total)
	if total["today_total_ml"].(float64) != 500 {
		t.Fatalf("expected bob unaffected, got %v", total["today_total_ml"])
	}

	// 不带 user_id 的重置清空全部
	rr = postJSON(t, r, "/reset/", map[string]interface{}{})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	getJSON(t, r, "/today-total/bob", &total)
	if total["today_total_ml"].(float64) != 0 {
		t.Fatalf("expected bob cleared by global reset, got %v", total["today_total_ml"])
	}
}

func TestResetRejectsMalformedBodyWithoutClearing(t *testing.T) {
	r, _, cleanup := setupHandlerTest(t)
	defer cleanup()

	postJSON(t, r, "/add-entry/", map[string]interface{}{"user_id": "alice", "amount_ml": 250})
	postJSON(t, r, "/add-entry/", map[string]interface{}{"user_id": "bob", "amount_ml": 500})

	// user_id 类型错误的请求体不能落入全局清空
	for _, body := range []string{`{"user_id": 123}`, `{"user_id":`} {
		req := httptest.NewRequest(http.MethodPost, "/reset/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for body %q, got %d", body, rr.Code)
		}

		var resp map[string]interface{}
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["status"] != "error" || resp["message"] == "" {
			t.Fatalf("expected error payload shape, got %v", resp)
		}
	}

	var total map[string]interface{}
	getJSON(t, r, "/today-total/alice", &total)
	if total["today_total_ml"].(float64) != 250 {
		t.Fatalf("expected alice untouched after rejected reset, got %v", total["today_total_ml"])
	}
	getJSON(t, r, "/today-total/bob", &total)
	if total["today_total_ml"].(float64) != 500 {
		t.Fatalf("expected bob untouched after rejected reset, got %v", total["today_total_ml"])
	}
}

func TestResetWithEmptyBodyClearsAllUsers(t *testing.T) {
	r, _, cleanup := setupHandlerTest(t)
	defer cleanup()

	postJSON(t, r, "/add-entry/", map[string]interface{}{"user_id": "alice", "amount_ml": 250})

	// 历史客户端会发送完全为空的请求体表示全局重置
	req := httptest.NewRequest(http.MethodPost, "/reset/", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty body, got %d", rr.Code)
	}

	var total map[string]interface{}
	getJSON(t, r, "/today-total/alice", &total)
	if total["today_total_ml"].(float64) != 0 {
		t.Fatalf("expected global clear on empty body, got %v", total["today_total_ml"])
	}
}
