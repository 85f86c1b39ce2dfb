package transport_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/frahmantamala/stagiaire-management/internal"
	"github.com/frahmantamala/stagiaire-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestTransport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transport Suite")
}

func decodeError(w *httptest.ResponseRecorder) map[string]interface{} {
	var body struct {
		Error map[string]interface{} `json:"error"`
	}
	Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
	return body.Error
}

var _ = Describe("BaseHandler", func() {
	var h *transport.BaseHandler

	BeforeEach(func() {
		h = transport.NewBaseHandler(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	})

	Describe("HandleServiceError", func() {
		It("should write AppErrors with their status and envelope", func() {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			h.HandleServiceError(w, r, internal.ErrMissionNotFound)

			Expect(w.Code).To(Equal(http.StatusNotFound))
			body := decodeError(w)
			Expect(body["code"]).To(Equal("MISSION_NOT_FOUND"))
			Expect(body["type"]).To(Equal("NOT_FOUND"))
		})

		It("should hide unknown errors behind a generic 500", func() {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			h.HandleServiceError(w, r, errors.New("pq: connection refused"))

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			body := decodeError(w)
			Expect(body["message"]).To(Equal("internal server error"))
		})
	})

	Describe("ParseID", func() {
		parse := func(raw string) (int64, *httptest.ResponseRecorder, bool) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/x/"+raw, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", raw)
			r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
			id, ok := h.ParseID(w, r, "id", internal.ErrStagiaireNotFound)
			return id, w, ok
		}

		It("should parse positive ids", func() {
			id, _, ok := parse("42")
			Expect(ok).To(BeTrue())
			Expect(id).To(Equal(int64(42)))
		})

		It("should answer 404 for malformed ids", func() {
			for _, raw := range []string{"abc", "-1", "0"} {
				_, w, ok := parse(raw)
				Expect(ok).To(BeFalse())
				Expect(w.Code).To(Equal(http.StatusNotFound))
			}
		})
	})

	Describe("DecodeJSON", func() {
		It("should reject malformed JSON with INVALID_BODY", func() {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{nope"))
			var dst map[string]interface{}
			Expect(h.DecodeJSON(w, r, &dst)).To(BeFalse())
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeError(w)["code"]).To(Equal("INVALID_BODY"))
		})
	})

	Describe("ExtractToken", func() {
		It("should prefer the bearer token", func() {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Authorization", "Bearer abc")
			r.Header.Set(transport.AuthTokenHeader, "def")
			Expect(transport.ExtractToken(r)).To(Equal("abc"))
		})

		It("should accept the custom header", func() {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set(transport.AuthTokenHeader, "def")
			Expect(transport.ExtractToken(r)).To(Equal("def"))
		})

		It("should return empty without credentials", func() {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Authorization", "Basic xyz")
			Expect(transport.ExtractToken(r)).To(BeEmpty())
		})
	})

	Describe("QueryInt", func() {
		It("should fall back on invalid values", func() {
			r := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=3", nil)
			Expect(transport.QueryInt(r, "limit", 20, 1, 100)).To(Equal(20))
			Expect(transport.QueryInt(r, "offset", 0, 0, 1<<30)).To(Equal(3))
		})
	})
})
