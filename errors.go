// File: lixenwraith/reload/errors.go
package reload

import "errors"

var (
	// ErrConfigNotFound indicates the configuration file does not exist.
	// The reload loop treats this as a skipped cycle, never a fatal condition.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrNoKeyMaterial indicates none of the key-material settings are populated.
	ErrNoKeyMaterial = errors.New(
		"no token key configuration found: set auth.jwt_pem (inline) or auth.jwt_pem_path (file) or auth.jwt_secret")

	// ErrVerifyOnly indicates the resolved key material has no private part, so
	// the verifier can validate tokens but cannot issue them.
	ErrVerifyOnly = errors.New("key material is verify-only: no private key available for signing")

	// ErrMissingLoader indicates a Reloader was built without a config source.
	ErrMissingLoader = errors.New("reloader requires a loader: use WithFile or WithLoader")

	// ErrMissingState indicates a Reloader was built without the shared runtime state.
	ErrMissingState = errors.New("reloader requires a runtime state: use WithState")
)
