// File: lixenwraith/reload/verifier.go
package reload

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// TokenVerifier validates bearer tokens and, when the key material includes a
// private part, issues them. Instances are immutable; the reload loop installs
// a freshly built one through the runtime state's verifier cell.
type TokenVerifier interface {
	// Verify parses and validates a token, returning its subject.
	Verify(ctx context.Context, token string) (string, error)

	// Issue mints a token for a subject with the given lifetime. Returns
	// ErrVerifyOnly when the material has no private part.
	Issue(ctx context.Context, subject string, ttl time.Duration) (string, error)

	// Algorithm names the signature algorithm, e.g. "RS256".
	Algorithm() string
}

const tokenIssuer = "reload"

// jwtVerifier is the jwx-backed implementation for both the RSA and HMAC
// algorithm families.
type jwtVerifier struct {
	alg       jwa.SignatureAlgorithm
	verifyKey any // *rsa.PublicKey or []byte
	signKey   any // *rsa.PrivateKey or []byte; nil means verify-only
}

// newHMACVerifier builds an HS256 verifier/signer over a shared secret.
func newHMACVerifier(secret []byte) TokenVerifier {
	return &jwtVerifier{
		alg:       jwa.HS256,
		verifyKey: secret,
		signKey:   secret,
	}
}

// newRSAVerifier builds an RS256 verifier from a decoded PEM block. Private
// material (PKCS#1 or PKCS#8) yields a signer as well; public material
// (PKIX or PKCS#1) yields a verify-only instance.
func newRSAVerifier(block *pem.Block) (TokenVerifier, error) {
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		if rsaKey, ok := key.(*rsa.PrivateKey); ok {
			return &jwtVerifier{alg: jwa.RS256, verifyKey: &rsaKey.PublicKey, signKey: rsaKey}, nil
		}
		return nil, fmt.Errorf("failed to parse PEM: unsupported private key type %T", key)
	}
	if rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return &jwtVerifier{alg: jwa.RS256, verifyKey: &rsaKey.PublicKey, signKey: rsaKey}, nil
	}
	if key, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		if rsaPub, ok := key.(*rsa.PublicKey); ok {
			return &jwtVerifier{alg: jwa.RS256, verifyKey: rsaPub}, nil
		}
		return nil, fmt.Errorf("failed to parse PEM: unsupported public key type %T", key)
	}
	if rsaPub, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return &jwtVerifier{alg: jwa.RS256, verifyKey: rsaPub}, nil
	}
	return nil, fmt.Errorf("failed to parse PEM: not an RSA key in PKCS#1, PKCS#8 or PKIX encoding")
}

func (v *jwtVerifier) Verify(ctx context.Context, token string) (string, error) {
	parsed, err := jwt.Parse([]byte(token),
		jwt.WithContext(ctx),
		jwt.WithKey(v.alg, v.verifyKey),
		jwt.WithValidate(true),
	)
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	return parsed.Subject(), nil
}

func (v *jwtVerifier) Issue(_ context.Context, subject string, ttl time.Duration) (string, error) {
	if v.signKey == nil {
		return "", ErrVerifyOnly
	}

	now := time.Now()
	token, err := jwt.NewBuilder().
		Issuer(tokenIssuer).
		Subject(subject).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(v.alg, v.signKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

func (v *jwtVerifier) Algorithm() string {
	return v.alg.String()
}
