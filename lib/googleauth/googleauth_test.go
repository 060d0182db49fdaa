package googleauth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testKeyPem(t *testing.T) (*rsa.PrivateKey, string) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	pemStr := string(pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: der,
	}))
	return key, pemStr
}

func TestAssertion(t *testing.T) {
	key, pemStr := testKeyPem(t)

	src, err := NewTokenSource(Credentials{
		Type:        "service_account",
		ClientEmail: "reporter@example.iam.gserviceaccount.com",
		PrivateKey:  pemStr,
	}, ScopeAnalyticsReadonly, ScopeWebmastersReadonly)
	require.NoError(t, err)

	now := time.Date(2025, time.October, 1, 12, 0, 0, 0, time.UTC)
	assertion, err := src.(*jwtSource).assertion(now)
	require.NoError(t, err)

	parts := strings.Split(assertion, ".")
	require.Len(t, parts, 3)

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	var header map[string]string
	require.NoError(t, json.Unmarshal(headerJSON, &header))
	require.Equal(t, "RS256", header["alg"])

	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var claims struct {
		Iss   string `json:"iss"`
		Scope string `json:"scope"`
		Iat   int64  `json:"iat"`
		Exp   int64  `json:"exp"`
	}
	require.NoError(t, json.Unmarshal(claimsJSON, &claims))
	require.Equal(t, "reporter@example.iam.gserviceaccount.com", claims.Iss)
	require.Contains(t, claims.Scope, "analytics.readonly")
	require.Contains(t, claims.Scope, "webmasters.readonly")
	require.Equal(t, now.Unix(), claims.Iat)
	require.Equal(t, now.Add(time.Hour).Unix(), claims.Exp)

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)
	digest := sha256.Sum256([]byte(parts[0] + "." + parts[1]))
	require.NoError(t, rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, digest[:], sig))
}

func TestRejectsNonServiceAccount(t *testing.T) {
	_, pemStr := testKeyPem(t)
	_, err := NewTokenSource(Credentials{
		Type:       "authorized_user",
		PrivateKey: pemStr,
	})
	require.Error(t, err)
}

func TestRejectsBadKey(t *testing.T) {
	_, err := NewTokenSource(Credentials{
		Type:       "service_account",
		PrivateKey: "not a key",
	})
	require.Error(t, err)
}
