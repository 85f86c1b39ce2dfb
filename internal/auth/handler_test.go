package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/frahmantamala/stagiaire-management/internal"
	"github.com/frahmantamala/stagiaire-management/internal/core/database"
	"github.com/frahmantamala/stagiaire-management/internal/transport"
	userPostgres "github.com/frahmantamala/stagiaire-management/internal/user/postgres"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = ginkgo.Describe("Auth Handler Integration", func() {
	var (
		handler   *Handler
		protected http.Handler
	)

	post := func(fn http.HandlerFunc, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		fn(w, req)
		return w
	}

	login := func() LoginResponse {
		gomega.Expect(post(handler.Register, `{"username":"awa","email":"awa@ministere.gov","password":"secret1"}`).Code).To(gomega.Equal(http.StatusCreated))
		w := post(handler.Login, `{"username":"awa","password":"secret1"}`)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		var resp LoginResponse
		gomega.Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(gomega.Succeed())
		return resp
	}

	ginkgo.BeforeEach(func() {
		db, err := database.OpenInMemory()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		tokenGen := NewJWTTokenGenerator(accessSecret, refreshSecret, 15*time.Minute, time.Hour)
		service := NewService(userPostgres.NewRepository(db), tokenGen, nil, bcrypt.MinCost, slogger)
		handler = NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		protected = handler.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, _ := internal.UserFromContext(r.Context())
			_ = json.NewEncoder(w).Encode(u)
		}))
	})

	ginkgo.It("should register with the user role even when another is requested", func() {
		w := post(handler.Register, `{"username":"awa","email":"awa@ministere.gov","password":"secret1","role":"admin"}`)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusCreated))
		gomega.Expect(w.Body.String()).To(gomega.ContainSubstring(`"role":"user"`))
		gomega.Expect(w.Body.String()).NotTo(gomega.ContainSubstring("passwordHash"))
	})

	ginkgo.It("should answer 401 for a wrong password", func() {
		login()
		w := post(handler.Login, `{"username":"awa","password":"nope"}`)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(w.Body.String()).To(gomega.ContainSubstring("INVALID_CREDENTIALS"))
	})

	ginkgo.It("should answer 409 on duplicate registration", func() {
		login()
		w := post(handler.Register, `{"username":"awa","email":"other@ministere.gov","password":"secret1"}`)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusConflict))
	})

	ginkgo.Describe("AuthMiddleware", func() {
		ginkgo.It("should reject requests without a token", func() {
			w := httptest.NewRecorder()
			protected.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stagiaires", nil))
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("should accept a bearer token", func() {
			resp := login()
			req := httptest.NewRequest(http.MethodGet, "/api/stagiaires", nil)
			req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
			w := httptest.NewRecorder()
			protected.ServeHTTP(w, req)
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(w.Body.String()).To(gomega.ContainSubstring(`"username":"awa"`))
		})

		ginkgo.It("should accept the X-Auth-Token header", func() {
			resp := login()
			req := httptest.NewRequest(http.MethodGet, "/api/stagiaires", nil)
			req.Header.Set(transport.AuthTokenHeader, resp.AccessToken)
			w := httptest.NewRecorder()
			protected.ServeHTTP(w, req)
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should reject refresh tokens", func() {
			resp := login()
			req := httptest.NewRequest(http.MethodGet, "/api/stagiaires", nil)
			req.Header.Set(transport.AuthTokenHeader, resp.RefreshToken)
			w := httptest.NewRecorder()
			protected.ServeHTTP(w, req)
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.It("should refresh tokens", func() {
		resp := login()
		w := post(handler.RefreshToken, `{"refreshToken":"`+resp.RefreshToken+`"}`)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(w.Body.String()).To(gomega.ContainSubstring("accessToken"))
	})

	ginkgo.It("should answer 204 on logout with a valid token", func() {
		resp := login()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
		w := httptest.NewRecorder()
		handler.Logout(w, req.WithContext(context.Background()))
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusNoContent))
	})
})
