package issuance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"certhub/internal/acme"
)

// validationCoordinator drives a request's challenges to completion: it
// re-accepts any challenge the server has not validated yet and polls the
// authorizations until every one reports valid or the budget runs out.
type validationCoordinator struct {
	client acme.Client
	policy PollPolicy
	log    *logrus.Entry
}

// timeoutMessage is what a request's Error field carries after the
// validation window closes without convergence.
func timeoutMessage(method string) string {
	return fmt.Sprintf("%s challenge(s) not validated in time.", strings.ToUpper(method))
}

// await blocks until every authorization behind req's challenges is valid.
// It returns ErrValidationTimeout wrapped with the method-specific message
// when the poll budget runs out; an invalid authorization ends the wait
// immediately.
func (v *validationCoordinator) await(ctx context.Context, req *CertificateRequest) error {
	err := v.policy.run(ctx, func() error {
		remaining := 0
		for _, ch := range req.Challenges {
			authz, err := v.client.GetAuthorization(ctx, ch.AuthzURL)
			if err != nil {
				return err
			}

			switch authz.Status {
			case acme.StatusValid:
				continue
			case acme.StatusInvalid:
				return backoff.Permanent(fmt.Errorf("authorization for %q is invalid", ch.Identifier))
			}

			// Accepting is idempotent; a challenge the server is still
			// processing is simply confirmed again.
			if err := v.client.AcceptChallenge(ctx, ch.URL); err != nil {
				return backoff.Permanent(err)
			}
			remaining++
		}

		if remaining > 0 {
			return fmt.Errorf("%w: %d challenge(s) still pending", errNotConverged, remaining)
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	v.log.WithFields(logrus.Fields{
		"requestId": req.ID,
		"method":    req.Method,
	}).Warnf("Domain validation failed: %v", err)

	if errors.Is(err, errNotConverged) {
		return fmt.Errorf("%w: %s", ErrValidationTimeout, timeoutMessage(req.Method))
	}
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Unwrap()
	}
	return err
}

// errNotConverged marks a poll iteration that found work still in flight.
var errNotConverged = errors.New("challenges not yet validated")
