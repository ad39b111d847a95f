package issuance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"certhub/internal/acme"
)

// certValidityPeriod is the advertised lifetime of certificates issued by
// Let's Encrypt and compatible CAs.
const certValidityPeriod = 90 * 24 * time.Hour

// errOrderInvalid marks an order the CA has terminally rejected. Unlike a
// transient lookup failure, this fails the request for good.
var errOrderInvalid = errors.New("order is invalid")

// CertificateBundle is the deliverable handed to the caller exactly once.
type CertificateBundle struct {
	CertificatePEM string    `json:"certificate"`
	PrivateKeyPEM  string    `json:"privateKey"`
	ChainPEM       string    `json:"chain,omitempty"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// orderFinalizer turns a validated order into a delivered certificate. It
// submits the CSR only when the order reports ready, so a repeated status
// check while the CA is processing never double-finalizes.
type orderFinalizer struct {
	client acme.Client
	policy PollPolicy
	now    func() time.Time
	log    *logrus.Entry
}

// collect inspects req's order and either reports that issuance is still in
// flight (nil bundle, nil error), fails the request, or returns the bundle.
// The caller owns store bookkeeping for the failure and delivery cases.
func (f *orderFinalizer) collect(ctx context.Context, req *CertificateRequest) (*CertificateBundle, error) {
	order, err := f.client.GetOrder(ctx, req.OrderURL)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case acme.StatusPending, acme.StatusProcessing:
		return nil, nil

	case acme.StatusInvalid:
		return nil, fmt.Errorf("%w: order for %q", errOrderInvalid, req.Domain)

	case acme.StatusReady:
		finalizeCtx, cancel := context.WithTimeout(ctx, f.policy.budget())
		defer cancel()
		if err := f.client.FinalizeOrder(finalizeCtx, order.FinalizeURL, req.CSR); err != nil {
			return nil, err
		}
		order, err = f.awaitIssuance(ctx, req.OrderURL)
		if err != nil {
			return nil, err
		}

	case acme.StatusValid:
		// Already issued, fall through to retrieval.

	default:
		return nil, fmt.Errorf("order for %q has unexpected status %q", req.Domain, order.Status)
	}

	cert, err := f.client.FetchCertificate(ctx, order.CertURL)
	if err != nil {
		return nil, err
	}

	f.log.WithFields(logrus.Fields{
		"requestId": req.ID,
		"domain":    req.Domain,
	}).Info("Certificate issued")

	return &CertificateBundle{
		CertificatePEM: cert.CertPEM,
		PrivateKeyPEM:  req.KeyPEM,
		ChainPEM:       cert.ChainPEM,
		ExpiresAt:      f.now().Add(certValidityPeriod),
	}, nil
}

// awaitIssuance polls the finalized order until the CA reports valid.
func (f *orderFinalizer) awaitIssuance(ctx context.Context, orderURL string) (*acme.Order, error) {
	var order *acme.Order
	err := f.policy.run(ctx, func() error {
		var err error
		order, err = f.client.GetOrder(ctx, orderURL)
		if err != nil {
			return err
		}
		switch order.Status {
		case acme.StatusValid:
			return nil
		case acme.StatusInvalid:
			return backoff.Permanent(fmt.Errorf("%w: order rejected during finalization", errOrderInvalid))
		default:
			return fmt.Errorf("%w: order status %q", errNotConverged, order.Status)
		}
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, errNotConverged) {
			return nil, ErrCertificateNotReady
		}
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return nil, perm.Unwrap()
		}
		return nil, err
	}
	return order, nil
}
