package internal_test

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/frahmantamala/stagiaire-management/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestInternal(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal Suite")
}

var _ = Describe("AppError", func() {
	It("should match sentinels through copies and wrapping", func() {
		err := fmt.Errorf("get stagiaire: %w", internal.ErrStagiaireNotFound.WithCause(errors.New("record missing")))
		Expect(errors.Is(err, internal.ErrStagiaireNotFound)).To(BeTrue())
		Expect(errors.Is(err, internal.ErrMissionNotFound)).To(BeFalse())

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusNotFound))
	})

	It("should not mutate the shared sentinel", func() {
		_ = internal.ErrDuplicateEmail.WithCause(errors.New("unique violation"))
		Expect(internal.ErrDuplicateEmail.Cause).To(BeNil())
	})

	It("should surface the first field message", func() {
		err := internal.NewValidationFieldError("stagiaireId", "stagiaire 9 does not exist", internal.ErrCodeUnknownReference)
		Expect(err.Error()).To(Equal("stagiaire 9 does not exist"))
		Expect(err.Code).To(Equal(internal.ErrCodeValidationFailed))

		status, body := err.ToHTTPResponse()
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body.(internal.Response).Error.Details.(internal.ValidationErrors).Errors[0].Code).To(Equal(string(internal.ErrCodeUnknownReference)))
	})
})

var _ = Describe("Config", func() {
	validConfig := func() *internal.Config {
		return &internal.Config{
			Server: internal.ServerConfig{
				AllowedOrigins:    "http://localhost:5173, https://app.example.com",
				ReadHeaderTimeout: time.Second,
				ReadTimeout:       5 * time.Second,
			},
			Database: internal.DatabaseConfig{
				Driver:       internal.DriverSQLite,
				Source:       "file::memory:",
				MaxOpenConns: 5,
				MaxIdleConns: 2,
			},
			Security: internal.SecurityConfig{
				AccessTokenSecret:    strings.Repeat("a", 32),
				RefreshTokenSecret:   strings.Repeat("b", 32),
				AccessTokenDuration:  15 * time.Minute,
				RefreshTokenDuration: time.Hour,
				BCryptCost:           10,
			},
		}
	}

	It("should accept a complete configuration", func() {
		Expect(validConfig().Validate()).To(Succeed())
	})

	It("should split and trim allowed origins", func() {
		cfg := validConfig()
		Expect(cfg.Server.Origins()).To(Equal([]string{"http://localhost:5173", "https://app.example.com"}))
	})

	It("should aggregate errors from every section", func() {
		cfg := validConfig()
		cfg.Database.Driver = "mysql"
		cfg.Security.RefreshTokenSecret = cfg.Security.AccessTokenSecret
		cfg.Mongo = internal.MongoConfig{Enabled: true}
		cfg.Webhook = internal.WebhookConfig{URL: "ftp://hooks.example.com"}

		err := cfg.Validate()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("database config"))
		Expect(err.Error()).To(ContainSubstring("security config"))
		Expect(err.Error()).To(ContainSubstring("mongo config"))
		Expect(err.Error()).To(ContainSubstring("webhook config"))
	})

	It("should report Cloudinary as configured only with every credential", func() {
		c := internal.CloudinaryConfig{CloudName: "demo", APIKey: "key"}
		Expect(c.Configured()).To(BeFalse())
		c.APISecret = "secret"
		Expect(c.Configured()).To(BeTrue())
	})

	It("should read the environment", func() {
		GinkgoT().Setenv("HTTP_PORT", "9090")
		GinkgoT().Setenv("DB_DRIVER", internal.DriverSQLite)
		GinkgoT().Setenv("WEBHOOK_TIMEOUT", "2s")
		GinkgoT().Setenv("MONGO_ENABLED", "true")

		cfg := internal.LoadConfigFromEnv()
		Expect(cfg.Server.Port).To(Equal(9090))
		Expect(cfg.Database.Driver).To(Equal(internal.DriverSQLite))
		Expect(cfg.Webhook.Timeout).To(Equal(2 * time.Second))
		Expect(cfg.Mongo.Enabled).To(BeTrue())
		Expect(cfg.Observability.Metrics.Path).To(Equal("/metrics"))
	})
})
