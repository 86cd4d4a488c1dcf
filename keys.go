// FILE: lixenwraith/reload/keys.go
package reload

import (
	"crypto/sha256"
	"encoding/asn1"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
)

// KeyDescriptor is auditable metadata about resolved key material. It is
// purely descriptive: logged at startup and on verifier reloads, never used
// for cryptographic operations or key selection.
type KeyDescriptor struct {
	// Mode records which configuration source supplied the material,
	// e.g. "RS256(inline)", "RS256(path=/etc/keys/jwt.pem)", "HS256(secret)".
	Mode string

	// Fingerprint is the first 12 hex characters of the SHA-256 digest of the
	// raw key bytes. Advisory only.
	Fingerprint string

	// KeyType is "RSA", "HS256", or "unknown" when structural inspection of
	// asymmetric material failed.
	KeyType string

	// Bits is the effective key size: the RSA modulus bit length, or the
	// shared secret length in bits. Zero when unknown.
	Bits int
}

// ResolveKeyMaterial turns the configured key material into a verifier plus
// its descriptor. Candidate sources are tried in a fixed priority order:
// inline PEM text, then a PEM file path, then a shared secret. The first
// populated option wins. Resolution fails closed when none are populated.
//
// The priority order is part of the contract: reordering it would silently
// change which credential takes effect when more than one is set.
func ResolveKeyMaterial(cfg AuthConfig) (TokenVerifier, KeyDescriptor, error) {
	if cfg.JWTPEM != "" {
		return resolvePEM([]byte(cfg.JWTPEM), "RS256(inline)")
	}

	if cfg.JWTPEMPath != "" {
		pemData, err := os.ReadFile(cfg.JWTPEMPath)
		if err != nil {
			return nil, KeyDescriptor{}, fmt.Errorf("failed to read auth.jwt_pem_path '%s': %w", cfg.JWTPEMPath, err)
		}
		return resolvePEM(pemData, fmt.Sprintf("RS256(path=%s)", cfg.JWTPEMPath))
	}

	if cfg.JWTSecret != "" {
		secret := []byte(cfg.JWTSecret)
		return newHMACVerifier(secret), KeyDescriptor{
			Mode:        "HS256(secret)",
			Fingerprint: fingerprint(secret),
			KeyType:     "HS256",
			Bits:        len(secret) * 8,
		}, nil
	}

	return nil, KeyDescriptor{}, ErrNoKeyMaterial
}

// resolvePEM builds an RSA verifier from PEM text. The fingerprint and key
// metadata are computed over the DER payload of the first PEM block.
func resolvePEM(pemData []byte, mode string) (TokenVerifier, KeyDescriptor, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, KeyDescriptor{}, fmt.Errorf("failed to parse PEM: no PEM block found")
	}

	verifier, err := newRSAVerifier(block)
	if err != nil {
		return nil, KeyDescriptor{}, err
	}

	keyType, bits := inspectKeyStructure(block.Bytes)
	return verifier, KeyDescriptor{
		Mode:        mode,
		Fingerprint: fingerprint(block.Bytes),
		KeyType:     keyType,
		Bits:        bits,
	}, nil
}

// fingerprint computes the condensed content digest used in audit logs:
// the first 12 hex characters of SHA-256 over the raw bytes.
func fingerprint(data []byte) string {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])[:12]
}

// inspectKeyStructure recovers the key type and, for RSA-family keys, the
// modulus bit length from DER bytes. Extraction is best-effort: any failure
// reports "unknown" rather than blocking the verifier build.
func inspectKeyStructure(der []byte) (string, int) {
	if bits, ok := firstIntegerBits(der); ok {
		return "RSA", bits
	}
	return "unknown", 0
}

// firstIntegerBits walks the DER structure depth-first and returns the
// effective bit length of the first INTEGER it finds. A PKCS#1 RSAPublicKey is
// SEQUENCE { modulus INTEGER, exponent INTEGER }, so for RSA public keys the
// first integer is the modulus. The bit length is computed over the big-endian
// magnitude with leading zero bits stripped, which big.Int.BitLen does.
func firstIntegerBits(der []byte) (int, bool) {
	rest := der
	for len(rest) > 0 {
		var raw asn1.RawValue
		tail, err := asn1.Unmarshal(rest, &raw)
		if err != nil {
			return 0, false
		}

		switch {
		case raw.Class == asn1.ClassUniversal && raw.Tag == asn1.TagInteger:
			return new(big.Int).SetBytes(raw.Bytes).BitLen(), true
		case raw.IsCompound:
			if bits, ok := firstIntegerBits(raw.Bytes); ok {
				return bits, true
			}
		}

		rest = tail
	}
	return 0, false
}
