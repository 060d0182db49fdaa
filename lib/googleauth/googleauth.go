package googleauth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"searchlight-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/googleauth")

const (
	ScopeAnalyticsReadonly  = "https://www.googleapis.com/auth/analytics.readonly"
	ScopeWebmastersReadonly = "https://www.googleapis.com/auth/webmasters.readonly"
)

// Credentials is the service account key file shape google hands out.
type Credentials struct {
	Type        string `json:"type"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// CredentialsFromEnv reads the service account key from
// GOOGLE_CREDENTIALS_JSON (inline) or GOOGLE_CREDENTIALS_FILE (path),
// in that order.
func CredentialsFromEnv() (Credentials, error) {
	var creds Credentials

	if inline := os.Getenv("GOOGLE_CREDENTIALS_JSON"); inline != "" {
		err := json.Unmarshal([]byte(inline), &creds)
		if err != nil {
			return creds, fmt.Errorf("parse GOOGLE_CREDENTIALS_JSON: %w", err)
		}
		return creds, nil
	}

	path := os.Getenv("GOOGLE_CREDENTIALS_FILE")
	if path == "" {
		return creds, fmt.Errorf("neither GOOGLE_CREDENTIALS_JSON nor GOOGLE_CREDENTIALS_FILE is set")
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		return creds, err
	}
	err = json.Unmarshal(contents, &creds)
	if err != nil {
		return creds, fmt.Errorf("parse %s: %w", path, err)
	}
	return creds, nil
}

// TokenSource hands out bearer tokens for outbound google api calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type jwtSource struct {
	creds  Credentials
	scopes []string
	key    *rsa.PrivateKey
	http   *resty.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewTokenSource builds a TokenSource implementing the two-legged
// jwt bearer grant for a service account. tokens are cached until
// a minute before expiry.
func NewTokenSource(creds Credentials, scopes ...string) (TokenSource, error) {
	if creds.Type != "" && creds.Type != "service_account" {
		return nil, fmt.Errorf("unsupported credential type: %s", creds.Type)
	}
	key, err := parsePrivateKey(creds.PrivateKey)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, "lib/googleauth")

	return &jwtSource{
		creds:  creds,
		scopes: scopes,
		key:    key,
		http:   client,
	}, nil
}

func parsePrivateKey(pemData string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("private key is not pem encoded")
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		// older keys are pkcs1
		rsaKey, err1 := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err1 != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		return rsaKey, nil
	}
	rsaKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not rsa")
	}
	return rsaKey, nil
}

func (s *jwtSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expires) {
		return s.token, nil
	}

	ctx, span := tracer.Start(ctx, "Token")
	defer span.End()

	assertion, err := s.assertion(time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	tokenURI := s.creds.TokenURI
	if tokenURI == "" {
		tokenURI = "https://oauth2.googleapis.com/token"
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	res, err := s.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type": "urn:ietf:params:oauth:grant-type:jwt-bearer",
			"assertion":  assertion,
		}).
		SetResult(&body).
		Post(tokenURI)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if res.IsError() {
		err := fmt.Errorf("token exchange failed: %s: %s", res.Status(), res.String())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if body.AccessToken == "" {
		err := fmt.Errorf("token exchange returned no access_token")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	s.token = body.AccessToken
	s.expires = time.Now().Add(time.Duration(body.ExpiresIn)*time.Second - time.Minute)
	return s.token, nil
}

// assertion builds and signs the RS256 jwt for the bearer grant.
func (s *jwtSource) assertion(now time.Time) (string, error) {
	header := map[string]string{"alg": "RS256", "typ": "JWT"}
	claims := map[string]any{
		"iss":   s.creds.ClientEmail,
		"scope": strings.Join(s.scopes, " "),
		"aud":   "https://oauth2.googleapis.com/token",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", err
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	enc := base64.RawURLEncoding
	signingInput := enc.EncodeToString(headerJSON) + "." + enc.EncodeToString(claimsJSON)

	digest := sha256.Sum256([]byte(signingInput))
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, digest[:])
	if err != nil {
		return "", err
	}

	return signingInput + "." + enc.EncodeToString(sig), nil
}
