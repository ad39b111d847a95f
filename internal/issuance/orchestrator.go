package issuance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-acme/lego/v4/challenge/dns01"
	"github.com/go-acme/lego/v4/challenge/http01"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"certhub/internal/acme"
	"certhub/internal/domainutil"
	"certhub/internal/stats"
)

// RequestInput is what a caller supplies to open a certificate request.
type RequestInput struct {
	Domain string
	Email  string
	Method string
}

// RequestResult is the challenge material returned to the caller, who must
// publish it before starting validation.
type RequestResult struct {
	RequestID  string              `json:"requestId"`
	Domain     string              `json:"domain"`
	Method     string              `json:"method"`
	Status     string              `json:"status"`
	Challenges []SelectedChallenge `json:"challenges"`
}

// StatusResult reports a request's current state. Certificate is set on the
// single response that delivers the bundle; Error is set once a request has
// failed.
type StatusResult struct {
	RequestID   string             `json:"requestId"`
	Status      string             `json:"status"`
	Error       string             `json:"error,omitempty"`
	Certificate *CertificateBundle `json:"certificate,omitempty"`
}

// Config wires an Orchestrator. Client and Store are required; the rest
// default sensibly.
type Config struct {
	Client acme.Client
	Store  *Store
	Poll   PollPolicy
	Stats  stats.Recorder
	Now    func() time.Time
	Logger *logrus.Logger
}

// Orchestrator is the issuance facade: it opens orders, runs validation and
// delivers certificates, keeping all interim state in the request store.
type Orchestrator struct {
	client    acme.Client
	store     *Store
	policy    PollPolicy
	stats     stats.Recorder
	now       func() time.Time
	log       *logrus.Entry
	validator *validationCoordinator
	finalizer *orderFinalizer
}

func NewOrchestrator(cfg Config) *Orchestrator {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewMemoryRecorder()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Poll.Interval <= 0 || cfg.Poll.MaxAttempts <= 0 {
		cfg.Poll = DefaultPollPolicy()
	}

	log := cfg.Logger.WithField("component", "issuance")
	return &Orchestrator{
		client:    cfg.Client,
		store:     cfg.Store,
		policy:    cfg.Poll,
		stats:     cfg.Stats,
		now:       cfg.Now,
		log:       log,
		validator: &validationCoordinator{client: cfg.Client, policy: cfg.Poll, log: log},
		finalizer: &orderFinalizer{client: cfg.Client, policy: cfg.Poll, now: cfg.Now, log: log},
	}
}

// RequestCertificate opens an ACME order for the domain and returns the
// challenge material the caller must publish. Wildcard domains are forced
// onto dns validation and ordered together with their apex.
func (o *Orchestrator) RequestCertificate(ctx context.Context, in RequestInput) (*RequestResult, error) {
	domain, err := domainutil.Normalize(in.Domain)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := domainutil.ValidateEmail(in.Email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	method := strings.ToLower(strings.TrimSpace(in.Method))
	if method == "" {
		method = MethodHTTP
	}
	if _, err := challengeTypeFor(method); err != nil {
		return nil, err
	}
	if domainutil.IsWildcard(domain) {
		method = MethodDNS
	}

	if err := o.client.RegisterAccount(ctx, in.Email); err != nil {
		return nil, err
	}

	key, keyPEM, err := acme.NewCertificateKey()
	if err != nil {
		return nil, err
	}
	csr, err := acme.NewCSR(key, domainutil.Base(domain), domainutil.OrderIdentifiers(domain))
	if err != nil {
		return nil, err
	}

	order, err := o.client.CreateOrder(ctx, domainutil.OrderIdentifiers(domain))
	if err != nil {
		return nil, err
	}

	authzs := make([]acme.Authorization, 0, len(order.AuthzURLs))
	for _, u := range order.AuthzURLs {
		authz, err := o.client.GetAuthorization(ctx, u)
		if err != nil {
			return nil, err
		}
		authzs = append(authzs, *authz)
	}

	challenges, err := selectChallenges(authzs, method)
	if err != nil {
		return nil, err
	}
	if err := o.decorateChallenges(challenges); err != nil {
		return nil, err
	}

	req := CertificateRequest{
		ID:         uuid.NewString(),
		Domain:     domain,
		Email:      in.Email,
		Method:     method,
		Status:     StatusPending,
		OrderURL:   order.URL,
		Challenges: challenges,
		KeyPEM:     keyPEM,
		CSR:        csr,
		CreatedAt:  o.now(),
	}
	o.store.Put(req)
	o.stats.CountRequested(ctx)

	o.log.WithFields(logrus.Fields{
		"requestId": req.ID,
		"domain":    domain,
		"method":    method,
	}).Info("Certificate request created")

	return &RequestResult{
		RequestID:  req.ID,
		Domain:     domain,
		Method:     method,
		Status:     req.Status,
		Challenges: challenges,
	}, nil
}

// decorateChallenges fills in the material the user publishes: the key
// authorization plus either the TXT record (dns-01) or the well-known path
// (http-01).
func (o *Orchestrator) decorateChallenges(challenges []SelectedChallenge) error {
	for i := range challenges {
		ch := &challenges[i]
		keyAuth, err := o.client.KeyAuthorization(ch.Token)
		if err != nil {
			return err
		}
		ch.KeyAuthorization = keyAuth

		switch ch.Type {
		case acme.ChallengeDNS01:
			info := dns01.GetChallengeInfo(ch.Identifier, keyAuth)
			ch.RecordName = strings.TrimSuffix(info.FQDN, ".")
			ch.RecordValue = info.Value
		case acme.ChallengeHTTP01:
			ch.HTTPPath = http01.ChallengePath(ch.Token)
		}
	}
	return nil
}

// StartValidation asks the CA to verify the published challenges and blocks
// until they all validate or the poll budget runs out. A request can be
// validated once; repeat calls see ErrInvalidState.
func (o *Orchestrator) StartValidation(ctx context.Context, requestID string) (*StatusResult, error) {
	req, ok := o.store.Get(requestID)
	if !ok {
		return nil, ErrNotFound
	}
	if req.Status != StatusPending {
		return nil, fmt.Errorf("%w: status is %q", ErrInvalidState, req.Status)
	}

	req.Status = StatusValidating
	req.ValidationStartedAt = o.now()
	o.store.Put(req)

	if err := o.validator.await(ctx, &req); err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		req.Status = StatusFailed
		if errors.Is(err, ErrValidationTimeout) {
			req.Error = timeoutMessage(req.Method)
		} else {
			req.Error = err.Error()
		}
		o.store.Put(req)
		o.stats.CountFailed(ctx)
		return nil, err
	}

	o.log.WithField("requestId", req.ID).Info("All challenges validated")
	return &StatusResult{RequestID: req.ID, Status: req.Status}, nil
}

// CheckStatus reports where a request stands. When the CA has issued the
// certificate, the bundle is returned and the request is removed, so the
// material is handed out exactly once.
func (o *Orchestrator) CheckStatus(ctx context.Context, requestID string) (*StatusResult, error) {
	req, ok := o.store.Get(requestID)
	if !ok {
		return nil, ErrNotFound
	}

	switch req.Status {
	case StatusPending:
		return &StatusResult{RequestID: req.ID, Status: StatusPending}, nil
	case StatusFailed:
		return &StatusResult{RequestID: req.ID, Status: StatusInvalid, Error: req.Error}, nil
	}

	bundle, err := o.finalizer.collect(ctx, &req)
	if err != nil {
		if errors.Is(err, errOrderInvalid) {
			// Reported once, then gone: the caller must start over.
			o.store.Delete(req.ID)
			o.stats.CountFailed(ctx)
			return &StatusResult{RequestID: req.ID, Status: StatusInvalid, Error: err.Error()}, nil
		}
		// ErrCertificateNotReady and transient CA failures leave the
		// request untouched for a later retry.
		return nil, err
	}
	if bundle == nil {
		return &StatusResult{RequestID: req.ID, Status: StatusPending}, nil
	}

	o.store.Delete(req.ID)
	o.stats.CountIssued(ctx)
	return &StatusResult{
		RequestID:   req.ID,
		Status:      StatusValid,
		Certificate: bundle,
	}, nil
}
