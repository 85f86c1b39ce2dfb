package stagiaire_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"

	"github.com/frahmantamala/stagiaire-management/internal/core/database"
	"github.com/frahmantamala/stagiaire-management/internal/stagiaire"
	stagiairePostgres "github.com/frahmantamala/stagiaire-management/internal/stagiaire/postgres"
	"github.com/frahmantamala/stagiaire-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Stagiaire Handler Integration", func() {
	var router *chi.Mux

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	create := func(nom, email string) stagiaire.Stagiaire {
		w := do(http.MethodPost, "/stagiaires", `{"nom":"`+nom+`","prenom":"Awa","email":"`+email+`","dateDebut":"01/03/2024"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
		var st stagiaire.Stagiaire
		Expect(json.Unmarshal(w.Body.Bytes(), &st)).To(Succeed())
		return st
	}

	BeforeEach(func() {
		db, err := database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := stagiaire.NewService(stagiairePostgres.NewStagiaireRepository(db), &fakeMediaStore{}, nil, slogger)
		handler := stagiaire.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Get("/stagiaires", handler.ListStagiaires)
		router.Post("/stagiaires", handler.CreateStagiaire)
		router.Get("/stagiaires/{id}", handler.GetStagiaire)
		router.Put("/stagiaires/{id}", handler.UpdateStagiaire)
		router.Delete("/stagiaires/{id}", handler.DeleteStagiaire)
		router.Post("/stagiaires/{id}/avatar", handler.UploadAvatar)
	})

	It("should create and fetch a stagiaire with camelCase fields", func() {
		st := create("Diallo", "awa@univ.sn")

		w := do(http.MethodGet, "/stagiaires/1", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"dateDebut":"01/03/2024"`))
		Expect(w.Body.String()).To(ContainSubstring(`"status":"active"`))
		Expect(st.ID).To(Equal(int64(1)))
	})

	It("should 404 on malformed and unknown ids", func() {
		Expect(do(http.MethodGet, "/stagiaires/not-an-id", "").Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodGet, "/stagiaires/99", "").Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodPut, "/stagiaires/99", `{"nom":"X"}`).Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodDelete, "/stagiaires/99", "").Code).To(Equal(http.StatusNotFound))
	})

	It("should answer 400 with field details on invalid bodies", func() {
		w := do(http.MethodPost, "/stagiaires", `{"nom":"X","email":"nope"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring(`"field":"prenom"`))
		Expect(w.Body.String()).To(ContainSubstring(`"field":"email"`))

		Expect(do(http.MethodPost, "/stagiaires", `{`).Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer 409 on duplicate email", func() {
		create("Diallo", "awa@univ.sn")
		w := do(http.MethodPost, "/stagiaires", `{"nom":"Ba","prenom":"Awa","email":"AWA@univ.sn"}`)
		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("should filter and search the list", func() {
		create("Diallo", "awa@univ.sn")
		create("Ndiaye", "fatou@univ.sn")
		do(http.MethodPut, "/stagiaires/2", `{"status":"completed"}`)

		w := do(http.MethodGet, "/stagiaires?status=completed", "")
		var resp stagiaire.StagiairesResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Total).To(Equal(int64(1)))
		Expect(resp.Stagiaires[0].Nom).To(Equal("Ndiaye"))

		w = do(http.MethodGet, "/stagiaires?search=DIAL&order=asc", "")
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Stagiaires).To(HaveLen(1))
		Expect(resp.Stagiaires[0].Email).To(Equal("awa@univ.sn"))
	})

	It("should remove deleted stagiaires from the list", func() {
		create("Diallo", "awa@univ.sn")
		Expect(do(http.MethodDelete, "/stagiaires/1", "").Code).To(Equal(http.StatusNoContent))

		var resp stagiaire.StagiairesResponse
		Expect(json.Unmarshal(do(http.MethodGet, "/stagiaires", "").Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Stagiaires).To(BeEmpty())
	})

	It("should upload an avatar", func() {
		create("Diallo", "awa@univ.sn")

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="avatar"; filename="me.jpg"`)
		h.Set("Content-Type", "image/jpeg")
		part, err := mw.CreatePart(h)
		Expect(err).NotTo(HaveOccurred())
		_, _ = part.Write([]byte("jpeg"))
		Expect(mw.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/stagiaires/1/avatar", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"avatar":"https://cdn.example.com/stagiaire-1-`))
	})
})
