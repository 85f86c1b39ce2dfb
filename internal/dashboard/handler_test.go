package dashboard_test

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/stagiaire-management/internal/dashboard"
	"github.com/frahmantamala/stagiaire-management/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Dashboard Handler", func() {
	var (
		repo    *MockRepository
		handler *dashboard.Handler
	)

	BeforeEach(func() {
		repo = &MockRepository{counts: map[string]map[string]int64{
			dashboard.TableMissions: {"not_started": 2},
		}}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler = dashboard.NewHandler(transport.NewBaseHandler(logger), dashboard.NewService(repo, logger))
	})

	It("should return camelCase stats", func() {
		w := httptest.NewRecorder()
		handler.GetStats(w, httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		var body map[string]map[string]interface{}
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		Expect(body["missions"]["notStarted"]).To(BeNumerically("==", 2))
		Expect(body["stagiaires"]["total"]).To(BeNumerically("==", 0))
	})

	It("should hide internal errors", func() {
		repo.err = errors.New("pq: relation does not exist")
		w := httptest.NewRecorder()
		handler.GetStats(w, httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(ContainSubstring("internal server error"))
		Expect(w.Body.String()).NotTo(ContainSubstring("relation"))
	})
})
