package restapi

import (
	log "log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	jwtverifier "github.com/okta/okta-jwt-verifier-golang"
)

// OktaOptions configures bearer token verification.
type OktaOptions struct {
	// Domain is the Okta org domain, the issuer is "https://<Domain>/oauth2/default".
	Domain   string
	ClientID string
	// Audience defaults to "api://default".
	Audience string
}

// OktaOptionsFromEnv reads OKTA_DOMAIN and OKTA_CLIENT_ID, returning nil when no domain is set.
func OktaOptionsFromEnv() *OktaOptions {
	domain := os.Getenv("OKTA_DOMAIN")
	if domain == "" {
		return nil
	}
	return &OktaOptions{
		Domain:   domain,
		ClientID: os.Getenv("OKTA_CLIENT_ID"),
	}
}

type verifier struct {
	setup jwtverifier.JwtVerifier
}

func newVerifier(o *OktaOptions) *verifier {
	aud := o.Audience
	if aud == "" {
		aud = "api://default"
	}
	return &verifier{
		setup: jwtverifier.JwtVerifier{
			Issuer: "https://" + o.Domain + "/oauth2/default",
			ClaimsToValidate: map[string]string{
				"aud": aud,
				"cid": o.ClientID,
			},
		},
	}
}

// verify checks the bearer token in header, writing the failure response itself.
func (v *verifier) verify(c *gin.Context) bool {
	// Allow easy debugging on dev.
	if os.Getenv("NODESTORE_ENV") == "DEV" {
		return true
	}

	token := c.Request.Header.Get("Authorization")
	if !strings.HasPrefix(token, "Bearer ") {
		c.String(http.StatusUnauthorized, "Unauthorized")
		return false
	}
	token = strings.TrimPrefix(token, "Bearer ")

	// Allow easy QA, bypass Okta based OAuth2 token verification w/ simple token equality check.
	if os.Getenv("NODESTORE_ENV") == "QA" {
		if qaToken := os.Getenv("NODESTORE_QA_TOKEN"); qaToken != "" && token == qaToken {
			return true
		}
	}

	if _, err := v.setup.New().VerifyAccessToken(token); err != nil {
		log.Warn("access token rejected", "error", err)
		c.String(http.StatusForbidden, err.Error())
		return false
	}
	return true
}

func (v *verifier) wrap(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v.verify(c) {
			h(c)
		}
	}
}
