package mission_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/stagiaire-management/internal/core/database"
	"github.com/frahmantamala/stagiaire-management/internal/mission"
	missionPostgres "github.com/frahmantamala/stagiaire-management/internal/mission/postgres"
	"github.com/frahmantamala/stagiaire-management/internal/stagiaire"
	stagiairePostgres "github.com/frahmantamala/stagiaire-management/internal/stagiaire/postgres"
	"github.com/frahmantamala/stagiaire-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Mission Handler Integration", func() {
	var (
		router *chi.Mux
		awa    int64
		fatou  int64
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decode := func(w *httptest.ResponseRecorder) mission.Mission {
		var m mission.Mission
		Expect(json.Unmarshal(w.Body.Bytes(), &m)).To(Succeed())
		return m
	}

	BeforeEach(func() {
		db, err := database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		stagiaireService := stagiaire.NewService(stagiairePostgres.NewStagiaireRepository(db), nil, nil, slogger)
		for _, email := range []string{"awa@univ.sn", "fatou@univ.sn"} {
			st, err := stagiaireService.Create(context.Background(), stagiaire.CreateStagiaireDTO{Nom: "N", Prenom: "P", Email: email})
			Expect(err).NotTo(HaveOccurred())
			if awa == 0 {
				awa = st.ID
			} else {
				fatou = st.ID
			}
		}

		service := mission.NewService(missionPostgres.NewMissionRepository(db), stagiaireService, nil, slogger)
		handler := mission.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Get("/missions", handler.ListMissions)
		router.Post("/missions", handler.CreateMission)
		router.Get("/missions/{id}", handler.GetMission)
		router.Put("/missions/{id}", handler.UpdateMission)
		router.Patch("/missions/{id}/progress", handler.UpdateProgress)
		router.Delete("/missions/{id}", handler.DeleteMission)
	})

	AfterEach(func() {
		awa, fatou = 0, 0
	})

	It("should create a mission with assignments and read it back", func() {
		w := do(http.MethodPost, "/missions", fmt.Sprintf(`{"title":"Audit SI","department":"DSI","progress":30,"stagiaires":[%d,%d]}`, awa, fatou))
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
		created := decode(w)
		Expect(created.Status).To(Equal(mission.StatusInProgress))

		got := decode(do(http.MethodGet, fmt.Sprintf("/missions/%d", created.ID), ""))
		Expect(got.Stagiaires).To(ConsistOf(awa, fatou))
		Expect(got.Department).To(Equal("DSI"))
	})

	It("should answer 400 listing unknown stagiaires", func() {
		w := do(http.MethodPost, "/missions", `{"title":"Audit SI","stagiaires":[404,405]}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("unknown stagiaire ids: 404, 405"))
	})

	It("should clamp progress through the progress endpoint", func() {
		created := decode(do(http.MethodPost, "/missions", `{"title":"Audit SI"}`))
		path := fmt.Sprintf("/missions/%d/progress", created.ID)

		m := decode(do(http.MethodPatch, path, `{"progress":150}`))
		Expect(m.Progress).To(Equal(100))
		Expect(m.Status).To(Equal(mission.StatusCompleted))

		m = decode(do(http.MethodPatch, path, `{"progress":0}`))
		Expect(m.Status).To(Equal(mission.StatusNotStarted))

		Expect(do(http.MethodPatch, path, `{}`).Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodPatch, "/missions/999/progress", `{"progress":5}`).Code).To(Equal(http.StatusNotFound))
	})

	It("should filter by status and department", func() {
		do(http.MethodPost, "/missions", `{"title":"A","department":"DSI","progress":100}`)
		do(http.MethodPost, "/missions", `{"title":"B","department":"RH"}`)

		var resp mission.MissionsResponse
		Expect(json.Unmarshal(do(http.MethodGet, "/missions?status=completed", "").Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Missions).To(HaveLen(1))
		Expect(resp.Missions[0].Title).To(Equal("A"))

		Expect(json.Unmarshal(do(http.MethodGet, "/missions?department=RH", "").Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Total).To(Equal(int64(1)))
		Expect(resp.Missions[0].Stagiaires).To(BeEmpty())

		Expect(do(http.MethodGet, "/missions?status=paused", "").Code).To(Equal(http.StatusBadRequest))
	})

	It("should remove deleted missions from the list", func() {
		created := decode(do(http.MethodPost, "/missions", fmt.Sprintf(`{"title":"Audit SI","stagiaires":[%d]}`, awa)))
		Expect(do(http.MethodDelete, fmt.Sprintf("/missions/%d", created.ID), "").Code).To(Equal(http.StatusNoContent))

		var resp mission.MissionsResponse
		Expect(json.Unmarshal(do(http.MethodGet, "/missions", "").Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Missions).To(BeEmpty())
		Expect(do(http.MethodGet, "/missions/oops", "").Code).To(Equal(http.StatusNotFound))
	})
})
