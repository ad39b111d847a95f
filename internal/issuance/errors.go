package issuance

import "errors"

// Sentinel errors distinguishing caller-fixable failures, sequencing
// mistakes and bounded-retry exhaustion. Upstream ACME failures pass
// through wrapped but unclassified.
var (
	// ErrInvalidInput marks a malformed domain, email or validation method.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a lookup of an unknown or expired request id.
	ErrNotFound = errors.New("certificate request not found or expired")

	// ErrInvalidState marks an operation invoked out of sequence.
	ErrInvalidState = errors.New("request is not in pending state")

	// ErrChallengeUnavailable marks an authorization that offers no
	// challenge of the required type.
	ErrChallengeUnavailable = errors.New("no matching challenge available")

	// ErrValidationTimeout marks a polling budget exhausted before all
	// challenges converged.
	ErrValidationTimeout = errors.New("domain validation did not complete in time")

	// ErrCertificateNotReady marks a finalize/poll budget exhausted before
	// the CA issued the certificate.
	ErrCertificateNotReady = errors.New("certificate was not issued in time")
)
