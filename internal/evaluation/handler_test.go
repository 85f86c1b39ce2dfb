package evaluation_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/stagiaire-management/internal"
	"github.com/frahmantamala/stagiaire-management/internal/core/database"
	"github.com/frahmantamala/stagiaire-management/internal/evaluation"
	evaluationPostgres "github.com/frahmantamala/stagiaire-management/internal/evaluation/postgres"
	"github.com/frahmantamala/stagiaire-management/internal/stagiaire"
	stagiairePostgres "github.com/frahmantamala/stagiaire-management/internal/stagiaire/postgres"
	"github.com/frahmantamala/stagiaire-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Evaluation Handler Integration", func() {
	var (
		router      *chi.Mux
		currentUser *internal.User
		stagiaireID int64
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	createEvaluation := func(a, b, c, d float64) evaluation.Evaluation {
		body := fmt.Sprintf(`{"stagiaireId":%d,"technicalSkills":%g,"communication":%g,"teamwork":%g,"initiative":%g,"averageScore":1,"comment":"Très bon stage"}`,
			stagiaireID, a, b, c, d)
		w := do(http.MethodPost, "/evaluations", body)
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
		var e evaluation.Evaluation
		Expect(json.Unmarshal(w.Body.Bytes(), &e)).To(Succeed())
		return e
	}

	BeforeEach(func() {
		db, err := database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		stagiaireService := stagiaire.NewService(stagiairePostgres.NewStagiaireRepository(db), nil, nil, slogger)
		st, err := stagiaireService.Create(internal.ContextWithUser(context.Background(), &internal.User{ID: 1}), stagiaire.CreateStagiaireDTO{
			Nom: "Diallo", Prenom: "Awa", Email: "awa@univ.sn", Etablissement: "UCAD", DateDebut: "01/03/2024", DateFin: "31/08/2024",
		})
		Expect(err).NotTo(HaveOccurred())
		stagiaireID = st.ID

		service := evaluation.NewService(evaluationPostgres.NewEvaluationRepository(db), stagiaireService, nil, slogger)
		handler := evaluation.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		currentUser = &internal.User{ID: 1, Username: "encadrant", Role: internal.RoleEncadrant}
		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithUser(r.Context(), currentUser)))
			})
		})
		router.Get("/evaluations", handler.ListEvaluations)
		router.Post("/evaluations", handler.CreateEvaluation)
		router.Get("/evaluations/{id}", handler.GetEvaluation)
		router.Put("/evaluations/{id}", handler.UpdateEvaluation)
		router.Delete("/evaluations/{id}", handler.DeleteEvaluation)
		router.Patch("/evaluations/{id}/review", handler.ReviewEvaluation)
		router.Get("/evaluations/{id}/pdf", handler.ExportPDF)
		router.Get("/stagiaires/{id}/evaluations", handler.ListStagiaireEvaluations)
	})

	It("should ignore a client averageScore", func() {
		e := createEvaluation(4, 4, 5, 4)
		Expect(e.AverageScore).To(Equal(4.25))

		w := do(http.MethodGet, fmt.Sprintf("/evaluations/%d", e.ID), "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"averageScore":4.25`))
	})

	It("should answer 400 for an unknown stagiaire", func() {
		w := do(http.MethodPost, "/evaluations", `{"stagiaireId":999,"technicalSkills":3,"communication":3,"teamwork":3,"initiative":3}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring(string(internal.ErrCodeUnknownReference)))
	})

	It("should answer 400 for out-of-range scores", func() {
		body := fmt.Sprintf(`{"stagiaireId":%d,"technicalSkills":5.5,"communication":3,"teamwork":3,"initiative":3}`, stagiaireID)
		w := do(http.MethodPost, "/evaluations", body)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring(`"code":"INVALID_SCORE"`))
	})

	It("should list by stagiaire and by filter", func() {
		createEvaluation(4, 3, 5, 2)
		createEvaluation(1, 2, 2, 2)

		var resp evaluation.EvaluationsResponse
		w := do(http.MethodGet, fmt.Sprintf("/stagiaires/%d/evaluations", stagiaireID), "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Total).To(Equal(int64(2)))
		Expect(resp.Evaluations[0].AverageScore).To(Equal(1.75))

		w = do(http.MethodGet, "/evaluations?status=reviewed", "")
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Evaluations).To(BeEmpty())

		Expect(do(http.MethodGet, "/evaluations?stagiaireId=abc", "").Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodGet, "/stagiaires/999/evaluations", "").Code).To(Equal(http.StatusNotFound))
	})

	It("should review once and refuse a second review", func() {
		e := createEvaluation(4, 3, 5, 2)

		w := do(http.MethodPatch, fmt.Sprintf("/evaluations/%d/review", e.ID), "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"status":"reviewed"`))

		w = do(http.MethodPatch, fmt.Sprintf("/evaluations/%d/review", e.ID), "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("ALREADY_REVIEWED"))
	})

	It("should refuse reviews from plain users", func() {
		e := createEvaluation(4, 3, 5, 2)
		currentUser = &internal.User{ID: 3, Role: internal.RoleUser}
		w := do(http.MethodPatch, fmt.Sprintf("/evaluations/%d/review", e.ID), "")
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should export a PDF report", func() {
		e := createEvaluation(4, 3, 5, 2)

		w := do(http.MethodGet, fmt.Sprintf("/evaluations/%d/pdf", e.ID), "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(Equal("application/pdf"))
		Expect(w.Header().Get("Content-Disposition")).To(ContainSubstring(fmt.Sprintf("evaluation-%d.pdf", e.ID)))
		Expect(w.Body.String()).To(HavePrefix("%PDF-"))

		Expect(do(http.MethodGet, "/evaluations/999/pdf", "").Code).To(Equal(http.StatusNotFound))
	})

	It("should delete and then 404", func() {
		e := createEvaluation(4, 3, 5, 2)
		path := fmt.Sprintf("/evaluations/%d", e.ID)
		Expect(do(http.MethodDelete, path, "").Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodGet, path, "").Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodGet, "/evaluations/abc", "").Code).To(Equal(http.StatusNotFound))
	})
})
