package internal_test

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/frahmantamala/property-hub/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const sampleConfig = `
http_server:
  port: 9090
  allowed_origins: "http://localhost:3000, https://backoffice.example.com"
  read_header_timeout: 5s
  read_timeout: 15s
database:
  max_open_conns: 10
  max_idle_conns: 5
  source: postgres://localhost/property_hub
security:
  jwt_secret: 0123456789abcdef0123456789abcdef
  issuer: property-hub
  access_token_duration: 15m
  leeway: 30s
  bcrypt_cost: 10
authorization:
  request_timeout: 2s
  resource_workstreams:
    properties: property-hub
    contact-logs: property-hub
observability:
  logging:
    level: debug
    format: json
`

var _ = Describe("Config", func() {
	Describe("LoadConfig", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
			Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(sampleConfig), 0o600)).To(Succeed())
		})

		It("should read every section and fill defaults", func() {
			cfg, err := internal.LoadConfig(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Validate()).To(Succeed())

			Expect(cfg.Server.Port).To(Equal(9090))
			Expect(cfg.Server.Origins()).To(Equal([]string{"http://localhost:3000", "https://backoffice.example.com"}))
			Expect(cfg.Security.AccessTokenDuration).To(Equal(15 * time.Minute))
			Expect(cfg.Security.Leeway).To(Equal(30 * time.Second))
			Expect(cfg.Authorization.RequestTimeout).To(Equal(2 * time.Second))
			Expect(cfg.Authorization.APIPrefix).To(Equal("/api/v1"))
			Expect(cfg.Authorization.ProfileCacheTTL).To(Equal(internal.DefaultProfileCacheTTL))
			Expect(cfg.Authorization.ResourceWorkstreams).To(HaveKeyWithValue("contact-logs", "property-hub"))
			Expect(cfg.Observability.Logging.Level).To(Equal("debug"))
		})

		It("should let ENV_ variables override file values", func() {
			GinkgoT().Setenv("ENV_SECURITY_ISSUER", "override")
			cfg, err := internal.LoadConfig(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Security.Issuer).To(Equal("override"))
		})

		It("should keep a zero profile cache ttl so the cache can be turned off", func() {
			disabled := strings.Replace(sampleConfig, "  request_timeout: 2s\n", "  request_timeout: 2s\n  profile_cache_ttl: 0s\n", 1)
			Expect(disabled).To(ContainSubstring("profile_cache_ttl: 0s"))
			Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(disabled), 0o600)).To(Succeed())

			cfg, err := internal.LoadConfig(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Validate()).To(Succeed())
			Expect(cfg.Authorization.ProfileCacheTTL).To(BeZero())
		})

		It("should fail when no config file exists", func() {
			_, err := internal.LoadConfig(GinkgoT().TempDir())
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("LoadConfigFromEnv", func() {
		It("should parse the resource workstream map", func() {
			GinkgoT().Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
			GinkgoT().Setenv("RESOURCE_WORKSTREAMS", "properties=property-hub, tags = marketing,broken")
			GinkgoT().Setenv("AUTHZ_REQUEST_TIMEOUT", "750ms")

			cfg := internal.LoadConfigFromEnv()
			Expect(cfg.Validate()).To(Succeed())
			Expect(cfg.Authorization.ResourceWorkstreams).To(Equal(map[string]string{
				"properties": "property-hub",
				"tags":       "marketing",
			}))
			Expect(cfg.Authorization.RequestTimeout).To(Equal(750 * time.Millisecond))
		})

		It("should keep PROFILE_CACHE_TTL=0 and default only when it is unset", func() {
			GinkgoT().Setenv("PROFILE_CACHE_TTL", "0")
			Expect(internal.LoadConfigFromEnv().Authorization.ProfileCacheTTL).To(BeZero())

			Expect(os.Unsetenv("PROFILE_CACHE_TTL")).To(Succeed())
			Expect(internal.LoadConfigFromEnv().Authorization.ProfileCacheTTL).To(Equal(internal.DefaultProfileCacheTTL))
		})

		It("should default every resource to the property hub workstream", func() {
			GinkgoT().Setenv("RESOURCE_WORKSTREAMS", "")
			cfg := internal.LoadConfigFromEnv()
			Expect(cfg.Authorization.ResourceWorkstreams).To(Equal(internal.DefaultResourceWorkstreams()))
		})
	})

	Describe("Validate", func() {
		var cfg *internal.Config

		BeforeEach(func() {
			cfg = &internal.Config{
				Database: internal.DatabaseConfig{MaxOpenConns: 10, MaxIdleConns: 5},
				Security: internal.SecurityConfig{
					JWTSecret:           "0123456789abcdef0123456789abcdef",
					AccessTokenDuration: time.Minute,
				},
			}
			cfg.ApplyDefaults()
		})

		It("should accept a minimal config once defaults are applied", func() {
			Expect(cfg.Validate()).To(Succeed())
		})

		DescribeTable("should reject invalid settings",
			func(mutate func(*internal.Config), want string) {
				mutate(cfg)
				err := cfg.Validate()
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring(want))
			},
			Entry("short secret", func(c *internal.Config) { c.Security.JWTSecret = "short" }, "jwt_secret"),
			Entry("negative leeway", func(c *internal.Config) { c.Security.Leeway = -time.Second }, "leeway"),
			Entry("bcrypt cost", func(c *internal.Config) { c.Security.BCryptCost = 4 }, "bcrypt_cost"),
			Entry("idle above open", func(c *internal.Config) { c.Database.MaxIdleConns = 50 }, "max_idle_conns"),
			Entry("relative prefix", func(c *internal.Config) { c.Authorization.APIPrefix = "api" }, "api_prefix"),
			Entry("zero timeout", func(c *internal.Config) { c.Authorization.RequestTimeout = 0 }, "request_timeout"),
			Entry("empty code", func(c *internal.Config) {
				c.Authorization.ResourceWorkstreams = map[string]string{"tags": " "}
			}, "tags"),
		)
	})
})
