package auth_test

import (
	"errors"
	"time"

	"github.com/frahmantamala/property-hub/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func sign(claims jwt.Claims, secret string) string {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	Expect(err).NotTo(HaveOccurred())
	return s
}

func registered(sub string, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   sub,
		Issuer:    "property-hub",
		Audience:  jwt.ClaimStrings{"property-hub-api"},
		IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
}

var _ = Describe("TokenManager", func() {
	var (
		now    time.Time
		tokens *auth.TokenManager
	)

	BeforeEach(func() {
		now = time.Now().Truncate(time.Second)
		tokens = newTokenManager(func() time.Time { return now })
	})

	It("should round-trip the subject id", func() {
		token, expiresAt, err := tokens.Issue(42, "u@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(expiresAt).To(Equal(now.Add(15 * time.Minute)))

		subject, err := tokens.Verify(token)
		Expect(err).NotTo(HaveOccurred())
		Expect(subject).To(Equal(int64(42)))
	})

	It("should report expiry distinctly from signature failure", func() {
		token, _, err := tokens.Issue(42, "")
		Expect(err).NotTo(HaveOccurred())

		now = now.Add(16 * time.Minute)
		_, err = tokens.Verify(token)
		Expect(err).To(MatchError(auth.ErrInvalidCredential))
		Expect(err).To(MatchError(auth.ErrCredentialExpired))
		Expect(errors.Is(err, auth.ErrCredentialSignature)).To(BeFalse())
		Expect(auth.FailureCause(err)).To(Equal("expired"))
	})

	It("should tolerate clock skew within the leeway", func() {
		token, _, err := tokens.Issue(42, "")
		Expect(err).NotTo(HaveOccurred())

		now = now.Add(15*time.Minute + 3*time.Second)
		_, err = tokens.Verify(token)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should reject a token signed with another secret", func() {
		token := sign(registered("42", now.Add(time.Hour)), "other-secret")
		_, err := tokens.Verify(token)
		Expect(err).To(MatchError(auth.ErrInvalidCredential))
		Expect(auth.FailureCause(err)).To(Equal("signature"))
	})

	It("should reject a token using a different algorithm", func() {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, registered("42", now.Add(time.Hour))).SignedString([]byte("test-secret"))
		Expect(err).NotTo(HaveOccurred())
		_, err = tokens.Verify(token)
		Expect(err).To(MatchError(auth.ErrInvalidCredential))
	})

	DescribeTable("should reject malformed input",
		func(credential string) {
			_, err := tokens.Verify(credential)
			Expect(err).To(MatchError(auth.ErrInvalidCredential))
			Expect(err).To(MatchError(auth.ErrCredentialMalformed))
		},
		Entry("empty", ""),
		Entry("garbage", "not-a-token"),
		Entry("two segments", "abc.def"),
	)

	It("should reject a wrong issuer", func() {
		claims := registered("42", now.Add(time.Hour))
		claims.Issuer = "someone-else"
		_, err := tokens.Verify(sign(claims, "test-secret"))
		Expect(err).To(MatchError(auth.ErrCredentialClaims))
	})

	It("should reject a wrong audience", func() {
		claims := registered("42", now.Add(time.Hour))
		claims.Audience = jwt.ClaimStrings{"billing"}
		_, err := tokens.Verify(sign(claims, "test-secret"))
		Expect(err).To(MatchError(auth.ErrCredentialClaims))
	})

	It("should require an expiry", func() {
		claims := registered("42", now.Add(time.Hour))
		claims.ExpiresAt = nil
		_, err := tokens.Verify(sign(claims, "test-secret"))
		Expect(err).To(MatchError(auth.ErrInvalidCredential))
	})

	It("should reject a non-numeric subject", func() {
		_, err := tokens.Verify(sign(registered("alice", now.Add(time.Hour)), "test-secret"))
		Expect(err).To(MatchError(auth.ErrCredentialClaims))
	})

	It("should refuse to build without a secret", func() {
		_, err := auth.NewTokenManager(auth.TokenConfig{Issuer: "a", Audience: "b", AccessTokenTTL: time.Minute})
		Expect(err).To(HaveOccurred())
	})
})
