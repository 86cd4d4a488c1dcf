// FILE: lixenwraith/reload/keys_test.go
package reload

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func publicPEM(t *testing.T, key *rsa.PrivateKey) string {
	t.Helper()
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PUBLIC KEY",
		Bytes: x509.MarshalPKCS1PublicKey(&key.PublicKey),
	}))
}

func privatePEM(t *testing.T, key *rsa.PrivateKey) string {
	t.Helper()
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))
}

func TestResolveSharedSecret(t *testing.T) {
	secret := "0123456789abcdef" // 16 bytes

	verifier, info, err := ResolveKeyMaterial(AuthConfig{JWTSecret: secret})
	require.NoError(t, err)
	require.NotNil(t, verifier)

	assert.Equal(t, "HS256(secret)", info.Mode)
	assert.Equal(t, "HS256", info.KeyType)
	assert.Equal(t, 16*8, info.Bits)
	assert.Len(t, info.Fingerprint, 12)

	// Resolving the same secret twice yields the same fingerprint.
	_, again, err := ResolveKeyMaterial(AuthConfig{JWTSecret: secret})
	require.NoError(t, err)
	assert.Equal(t, info.Fingerprint, again.Fingerprint)

	// A different secret yields a different fingerprint.
	_, other, err := ResolveKeyMaterial(AuthConfig{JWTSecret: "another-secret"})
	require.NoError(t, err)
	assert.NotEqual(t, info.Fingerprint, other.Fingerprint)
}

func TestResolveRSAPublicKey(t *testing.T) {
	key := testRSAKey(t)

	verifier, info, err := ResolveKeyMaterial(AuthConfig{JWTPEM: publicPEM(t, key)})
	require.NoError(t, err)
	require.NotNil(t, verifier)

	assert.Equal(t, "RS256(inline)", info.Mode)
	assert.Equal(t, "RSA", info.KeyType)
	assert.Equal(t, 2048, info.Bits)
	assert.Len(t, info.Fingerprint, 12)
	assert.Equal(t, "RS256", verifier.Algorithm())

	// Public-only material cannot issue tokens.
	_, err = verifier.Issue(context.Background(), "alice", time.Minute)
	assert.ErrorIs(t, err, ErrVerifyOnly)
}

func TestResolveRSAPrivateKeyRoundTrip(t *testing.T) {
	key := testRSAKey(t)

	verifier, info, err := ResolveKeyMaterial(AuthConfig{JWTPEM: privatePEM(t, key)})
	require.NoError(t, err)
	assert.Equal(t, "RSA", info.KeyType)

	token, err := verifier.Issue(context.Background(), "alice", time.Minute)
	require.NoError(t, err)

	subject, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestResolveKeyFile(t *testing.T) {
	key := testRSAKey(t)
	pemPath := filepath.Join(t.TempDir(), "jwt.pem")
	require.NoError(t, os.WriteFile(pemPath, []byte(publicPEM(t, key)), 0o600))

	verifier, info, err := ResolveKeyMaterial(AuthConfig{JWTPEMPath: pemPath})
	require.NoError(t, err)
	require.NotNil(t, verifier)
	assert.Equal(t, "RS256(path="+pemPath+")", info.Mode)
	assert.Equal(t, 2048, info.Bits)
}

func TestResolveKeyFileUnreadable(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.pem")

	_, _, err := ResolveKeyMaterial(AuthConfig{JWTPEMPath: missing})
	require.Error(t, err)
	// The failure names the offending path.
	assert.Contains(t, err.Error(), missing)
}

func TestResolvePriorityOrder(t *testing.T) {
	key := testRSAKey(t)
	pemPath := filepath.Join(t.TempDir(), "jwt.pem")
	require.NoError(t, os.WriteFile(pemPath, []byte(publicPEM(t, key)), 0o600))

	t.Run("InlineBeatsPathAndSecret", func(t *testing.T) {
		_, info, err := ResolveKeyMaterial(AuthConfig{
			JWTPEM:     publicPEM(t, key),
			JWTPEMPath: pemPath,
			JWTSecret:  "shadowed",
		})
		require.NoError(t, err)
		assert.Equal(t, "RS256(inline)", info.Mode)
	})

	t.Run("PathBeatsSecret", func(t *testing.T) {
		_, info, err := ResolveKeyMaterial(AuthConfig{
			JWTPEMPath: pemPath,
			JWTSecret:  "shadowed",
		})
		require.NoError(t, err)
		assert.Equal(t, "RS256(path="+pemPath+")", info.Mode)
	})
}

func TestResolveNoMaterial(t *testing.T) {
	_, _, err := ResolveKeyMaterial(AuthConfig{})
	assert.ErrorIs(t, err, ErrNoKeyMaterial)
	// The error names all three expected settings.
	assert.Contains(t, err.Error(), "auth.jwt_pem")
	assert.Contains(t, err.Error(), "auth.jwt_pem_path")
	assert.Contains(t, err.Error(), "auth.jwt_secret")
}

func TestResolveMalformedPEM(t *testing.T) {
	_, _, err := ResolveKeyMaterial(AuthConfig{JWTPEM: "not a pem at all"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PEM")
}

func TestHMACVerifyRejectsTamperedToken(t *testing.T) {
	verifier, _, err := ResolveKeyMaterial(AuthConfig{JWTSecret: "secret-one"})
	require.NoError(t, err)

	token, err := verifier.Issue(context.Background(), "alice", time.Minute)
	require.NoError(t, err)

	other, _, err := ResolveKeyMaterial(AuthConfig{JWTSecret: "secret-two"})
	require.NoError(t, err)

	_, err = other.Verify(context.Background(), token)
	assert.Error(t, err, "a verifier with different key material must reject the token")
}

func TestInspectKeyStructureBestEffort(t *testing.T) {
	// Garbage DER must degrade to unknown metadata, never an error.
	keyType, bits := inspectKeyStructure([]byte{0xde, 0xad, 0xbe, 0xef})
	assert.Equal(t, "unknown", keyType)
	assert.Zero(t, bits)
}
