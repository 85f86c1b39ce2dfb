package user_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/stagiaire-management/internal"
	"github.com/frahmantamala/stagiaire-management/internal/core/database"
	evaluationDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/evaluation"
	"github.com/frahmantamala/stagiaire-management/internal/transport"
	"github.com/frahmantamala/stagiaire-management/internal/user"
	userPostgres "github.com/frahmantamala/stagiaire-management/internal/user/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var _ = Describe("User Handler Integration", func() {
	var (
		handler *user.Handler
		repo    *userPostgres.Repository
		db      *gorm.DB
		me      *internal.User
	)

	serve := func(method, path, body string, fn http.HandlerFunc, params map[string]string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
		ctx = internal.ContextWithUser(ctx, me)
		w := httptest.NewRecorder()
		fn(w, req.WithContext(ctx))
		return w
	}

	BeforeEach(func() {
		var err error
		db, err = database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = userPostgres.NewRepository(db)
		service := user.NewService(repo, nil, bcrypt.MinCost, slogger)
		handler = user.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		hash, _ := user.HashPassword("password1", bcrypt.MinCost)
		admin := user.ToDataModel(user.NewUser("admin", "admin@ministere.gov", hash))
		admin.Role = internal.RoleAdmin
		Expect(repo.Create(context.Background(), admin)).To(Succeed())
		other := user.ToDataModel(user.NewUser("bob", "bob@ministere.gov", hash))
		Expect(repo.Create(context.Background(), other)).To(Succeed())

		me = &internal.User{ID: admin.ID, Username: admin.Username, Role: internal.RoleAdmin}
	})

	It("should return the current user without the password hash", func() {
		w := serve(http.MethodGet, "/api/auth/me", "", handler.GetCurrentUser, nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).NotTo(ContainSubstring("password"))

		var u map[string]interface{}
		Expect(json.Unmarshal(w.Body.Bytes(), &u)).To(Succeed())
		Expect(u["username"]).To(Equal("admin"))
		Expect(u["preferences"]).To(HaveKeyWithValue("theme", "light"))
	})

	It("should update preferences", func() {
		w := serve(http.MethodPut, "/api/auth/preferences", `{"theme":"dark","brightness":40}`, handler.UpdatePreferences, nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"brightness":40`))
	})

	It("should answer 409 when the new email is taken", func() {
		w := serve(http.MethodPut, "/api/auth/profile", `{"email":"bob@ministere.gov"}`, handler.UpdateProfile, nil)
		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("should change another user's role", func() {
		w := serve(http.MethodPatch, "/api/users/2/role", `{"role":"encadrant"}`, handler.ChangeRole, map[string]string{"id": "2"})
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"role":"encadrant"`))
	})

	It("should 404 on malformed or unknown ids", func() {
		Expect(serve(http.MethodDelete, "/api/users/x", "", handler.DeleteUser, map[string]string{"id": "x"}).Code).To(Equal(http.StatusNotFound))
		Expect(serve(http.MethodDelete, "/api/users/77", "", handler.DeleteUser, map[string]string{"id": "77"}).Code).To(Equal(http.StatusNotFound))
	})

	It("should list and delete users", func() {
		w := serve(http.MethodDelete, "/api/users/2", "", handler.DeleteUser, map[string]string{"id": "2"})
		Expect(w.Code).To(Equal(http.StatusNoContent))

		w = serve(http.MethodGet, "/api/users", "", handler.ListUsers, nil)
		var resp user.UsersResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Users).To(HaveLen(1))
	})

	It("should answer 409 when deleting an evaluator", func() {
		Expect(db.Create(&evaluationDatamodel.Evaluation{StagiaireID: 1, EvaluatorID: 2, Status: "draft"}).Error).To(Succeed())

		w := serve(http.MethodDelete, "/api/users/2", "", handler.DeleteUser, map[string]string{"id": "2"})
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring(string(internal.ErrCodeUserHasEvaluations)))

		u, err := repo.GetByID(context.Background(), 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(u).NotTo(BeNil())
	})
})
