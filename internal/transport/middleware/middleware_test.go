package middleware_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/frahmantamala/stagiaire-management/internal"
	"github.com/frahmantamala/stagiaire-management/internal/transport/middleware"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func withUser(r *http.Request, role string) *http.Request {
	return r.WithContext(internal.ContextWithUser(r.Context(), &internal.User{ID: 1, Username: "u", Role: role}))
}

var _ = Describe("RequireRoles", func() {
	It("should reject anonymous requests with 401", func() {
		w := httptest.NewRecorder()
		middleware.RequireAdmin()(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should reject users without the role with 403", func() {
		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodGet, "/", nil), internal.RoleUser)
		middleware.RequireReviewer()(ok).ServeHTTP(w, r)
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(w.Body.String()).To(ContainSubstring("INSUFFICIENT_ROLE"))
	})

	It("should let encadrants review", func() {
		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodGet, "/", nil), internal.RoleEncadrant)
		middleware.RequireReviewer()(ok).ServeHTTP(w, r)
		Expect(w.Code).To(Equal(http.StatusOK))
	})
})

var _ = Describe("RequestID", func() {
	It("should reuse an incoming trace id", func() {
		var seen string
		h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = chiMiddleware.GetReqID(r.Context())
		}))
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(middleware.TraceIDHeader, "trace-1")
		h.ServeHTTP(w, r)

		Expect(seen).To(Equal("trace-1"))
		Expect(w.Header().Get(middleware.TraceIDHeader)).To(Equal("trace-1"))
	})

	It("should mint a trace id when none is sent", func() {
		w := httptest.NewRecorder()
		middleware.RequestID(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(w.Header().Get(middleware.TraceIDHeader)).To(HaveLen(36))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("should turn panics into a JSON 500", func() {
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
		h := middleware.RecoveryMiddleware(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		var body map[string]map[string]interface{}
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		Expect(body["error"]["message"]).To(Equal("internal server error"))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("should filter credentials out of logged bodies and headers", func() {
		var buf bytes.Buffer
		lg := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		var received string
		h := middleware.LoggingMiddleware(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b := new(bytes.Buffer)
			_, _ = b.ReadFrom(r.Body)
			received = b.String()
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"accessToken":"abc.def.ghi"}`))
		}))

		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"admin","password":"s3cret"}`))
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("X-Auth-Token", "tok")
		h.ServeHTTP(httptest.NewRecorder(), r)

		Expect(received).To(ContainSubstring("s3cret"))
		Expect(buf.String()).NotTo(ContainSubstring("s3cret"))
		Expect(buf.String()).NotTo(ContainSubstring("abc.def.ghi"))
		Expect(buf.String()).NotTo(ContainSubstring(`"tok"`))
		Expect(buf.String()).To(ContainSubstring("admin"))
	})

	It("should stream oversized bodies to the handler without logging them", func() {
		var buf bytes.Buffer
		lg := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		var received int
		h := middleware.LoggingMiddleware(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n, err := io.Copy(io.Discard, r.Body)
			Expect(err).NotTo(HaveOccurred())
			received = int(n)
			w.WriteHeader(http.StatusNoContent)
		}))

		payload := `{"comment":"` + strings.Repeat("x", 256<<10) + `","password":"s3cret"}`
		r := httptest.NewRequest(http.MethodPost, "/api/evaluations", strings.NewReader(payload))
		r.Header.Set("Content-Type", "application/json")
		h.ServeHTTP(httptest.NewRecorder(), r)

		Expect(received).To(Equal(len(payload)))
		Expect(buf.String()).To(ContainSubstring("[TRUNCATED]"))
		Expect(buf.String()).NotTo(ContainSubstring("s3cret"))
		Expect(buf.Len()).To(BeNumerically("<", 16<<10))
	})

	It("should log body read failures", func() {
		var buf bytes.Buffer
		lg := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		var readErr error
		h := middleware.LoggingMiddleware(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, readErr = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusBadRequest)
		}))

		body := io.MultiReader(strings.NewReader(`{"nom":"Diallo"`), iotest.ErrReader(errors.New("connection reset")))
		r := httptest.NewRequest(http.MethodPost, "/api/stagiaires", body)
		r.Header.Set("Content-Type", "application/json")
		h.ServeHTTP(httptest.NewRecorder(), r)

		Expect(buf.String()).To(ContainSubstring("failed to read request body for logging"))
		Expect(buf.String()).To(ContainSubstring("connection reset"))
		Expect(readErr).To(MatchError("connection reset"))
	})
})

var _ = Describe("CORS", func() {
	It("should answer preflight requests for allowed origins", func() {
		h := middleware.CORS([]string{"http://localhost:3000"})(ok)
		r := httptest.NewRequest(http.MethodOptions, "/api/stagiaires", nil)
		r.Header.Set("Origin", "http://localhost:3000")
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
		r.Header.Set("Access-Control-Request-Headers", "X-Auth-Token")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:3000"))
	})
})

var _ = Describe("HTTPMetrics", func() {
	It("should count requests by route pattern", func() {
		reg := prometheus.NewRegistry()
		m := middleware.NewHTTPMetrics(reg)

		router := chi.NewRouter()
		router.Use(m.Middleware)
		router.Get("/api/missions/{id}", ok)

		for _, id := range []string{"1", "2"} {
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/missions/"+id, nil))
		}

		count, err := testutil.GatherAndCount(reg, "stagiaire_http_requests_total")
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(1))
	})
})
