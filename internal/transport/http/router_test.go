package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Gunvolt24/brokerdemo/internal/domain"
	"github.com/Gunvolt24/brokerdemo/internal/ports/mocks"
	rest "github.com/Gunvolt24/brokerdemo/internal/transport/http"
	"github.com/Gunvolt24/brokerdemo/pkg/httpx"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
)

type noopLogger struct{}

func (noopLogger) Debugf(context.Context, string, ...any) {}
func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

func init() { gin.SetMode(gin.TestMode) }

func newRouter(sender *mocks.MockMessageSender) *gin.Engine {
	h := rest.NewHandler(sender, noopLogger{}, "SQS", time.Second)
	return rest.NewRouter(h, "")
}

func postMessage(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v body=%s", err, w.Body.String())
	}
	return got
}

func TestPostMessage_OK(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockMessageSender(ctrl)

	sender.EXPECT().Send(gomock.Any(), "order-42").
		DoAndReturn(func(ctx context.Context, id string) (domain.SendResult, error) {
			if _, ok := ctx.Deadline(); !ok {
				t.Errorf("handler timeout not applied")
			}
			return domain.SendResult{MessageID: "a1b2-c3", SentID: id}, nil
		})

	w := postMessage(newRouter(sender), `{"id":"order-42"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	got := decode(t, w)
	if got["success"] != true || got["messageId"] != "a1b2-c3" || got["sentId"] != "order-42" {
		t.Fatalf("unexpected body: %v", got)
	}
	if w.Header().Get(httpx.HeaderRequestID) == "" {
		t.Fatal("X-Request-ID header not set")
	}
}

func TestPostMessage_BlankID_400(t *testing.T) {
	for _, body := range []string{`{"id":""}`, `{"id":"   "}`, `{}`} {
		ctrl := gomock.NewController(t)
		sender := mocks.NewMockMessageSender(ctrl)
		sender.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)

		w := postMessage(newRouter(sender), body)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("body=%s: want 400, got %d", body, w.Code)
		}
		if got := decode(t, w); got["error"] != "ID is required" {
			t.Fatalf("body=%s: unexpected error: %v", body, got)
		}
	}
}

func TestPostMessage_InvalidJSON_400(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockMessageSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)

	w := postMessage(newRouter(sender), `{"id":`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
	if got := decode(t, w); got["error"] != "invalid request body" {
		t.Fatalf("unexpected error: %v", got)
	}
}

func TestPostMessage_BrokerError_500(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockMessageSender(ctrl)

	sender.EXPECT().Send(gomock.Any(), "x").
		Return(domain.SendResult{}, fmt.Errorf("%w: send message: connection refused", domain.ErrBrokerUnavailable))

	w := postMessage(newRouter(sender), `{"id":"x"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", w.Code)
	}
	got := decode(t, w)
	if got["error"] != "Failed to send message to SQS" {
		t.Fatalf("unexpected error: %v", got)
	}
	if d, _ := got["details"].(string); !strings.Contains(d, "connection refused") {
		t.Fatalf("details must carry the cause: %v", got)
	}
	if _, ok := got["sentId"]; ok {
		t.Fatalf("failure response must not carry sentId: %v", got)
	}
}

func TestPostMessage_ValidationFromService_400(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockMessageSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), "x").Return(domain.SendResult{}, domain.ErrValidation)

	if w := postMessage(newRouter(sender), `{"id":"x"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
}

func TestPostMessage_ConfigurationError_500(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockMessageSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), "x").Return(domain.SendResult{}, errors.Join(domain.ErrConfiguration))

	h := rest.NewHandler(sender, noopLogger{}, "Kafka", 0)
	w := postMessage(rest.NewRouter(h, ""), `{"id":"x"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", w.Code)
	}
	if got := decode(t, w); got["error"] != "Failed to send message to Kafka" {
		t.Fatalf("unexpected error: %v", got)
	}
}

func TestHealth(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := newRouter(mocks.NewMockMessageSender(ctrl))

	before := time.Now().UTC().Add(-time.Second)

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var got struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Status != "healthy" || got.Timestamp.Before(before) {
		t.Fatalf("unexpected health: %+v", got)
	}
}

func TestProbeRouter_NoAPI(t *testing.T) {
	r := rest.NewProbeRouter(noopLogger{})

	for path, want := range map[string]int{
		"/health":  http.StatusOK,
		"/ping":    http.StatusOK,
		"/metrics": http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("%s: want %d, got %d", path, want, w.Code)
		}
	}

	w := postMessage(r, `{"id":"x"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("worker must not expose /api/message, got %d", w.Code)
	}
}
