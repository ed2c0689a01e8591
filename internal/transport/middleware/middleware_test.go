package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/profaxno/admin-management/internal/transport/middleware"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

var _ = Describe("LoggingMiddleware", func() {
	var (
		logOutput *bytes.Buffer
		handler   http.Handler
	)

	BeforeEach(func() {
		logOutput = &bytes.Buffer{}
		logger := slog.New(slog.NewJSONHandler(logOutput, nil))

		handler = middleware.LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"id":"user-1"}`))
		}))
	})

	It("should redact passwords from logged request bodies", func() {
		body := strings.NewReader(`{"name":"ADMIN","email":"admin@example.com","password":"hunter2"}`)
		req := httptest.NewRequest(http.MethodPut, "/api/v1/users", body)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		Expect(logOutput.String()).To(ContainSubstring("[REDACTED]"))
		Expect(logOutput.String()).NotTo(ContainSubstring("hunter2"))
		Expect(logOutput.String()).To(ContainSubstring("admin@example.com"))
	})

	It("should leave the request body readable for the handler", func() {
		var seen string
		inner := middleware.LoggingMiddleware(slog.New(slog.NewJSONHandler(logOutput, nil)))(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				buf := new(bytes.Buffer)
				buf.ReadFrom(r.Body)
				seen = buf.String()
			}))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/companies/search", strings.NewReader(`{"name":"ACME"}`))
		inner.ServeHTTP(httptest.NewRecorder(), req)

		Expect(seen).To(Equal(`{"name":"ACME"}`))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("should answer 500 without echoing the panic value", func() {
		logOutput := &bytes.Buffer{}
		logger := slog.New(slog.NewJSONHandler(logOutput, nil))

		handler := middleware.RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("connection string postgres://admin:swordfish@db")
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/companies/search", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).To(MatchJSON(`{"code":500,"message":"internal server error"}`))
		Expect(rec.Body.String()).NotTo(ContainSubstring("swordfish"))
		Expect(logOutput.String()).To(ContainSubstring("panic recovered"))
	})
})

var _ = Describe("RequestID", func() {
	It("should echo an inbound trace id", func() {
		handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		req.Header.Set("X-Trace-ID", "trace-123")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		Expect(rec.Header().Get("X-Trace-ID")).To(Equal("trace-123"))
	})

	It("should mint a trace id when the caller sends none", func() {
		handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

		Expect(rec.Header().Get("X-Trace-ID")).NotTo(BeEmpty())
	})
})
