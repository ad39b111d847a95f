package acme

import (
	"context"
	"crypto"
	"encoding/pem"
	"errors"
	"fmt"

	xacme "golang.org/x/crypto/acme"
)

// Client is the capability the orchestrator consumes from the ACME wire
// protocol. Orders, authorizations and challenges are addressed by their
// opaque URLs; the implementation owns directory discovery, JWS signing and
// nonce handling.
type Client interface {
	// RegisterAccount creates the ACME account for the configured key, or
	// confirms the existing one. Safe to call once per certificate request.
	RegisterAccount(ctx context.Context, email string) error

	// CreateOrder opens an order with one DNS identifier per name.
	CreateOrder(ctx context.Context, identifiers []string) (*Order, error)

	// GetOrder refreshes an order snapshot.
	GetOrder(ctx context.Context, orderURL string) (*Order, error)

	// GetAuthorization refreshes a per-identifier authorization, including
	// the current status of its challenges.
	GetAuthorization(ctx context.Context, authzURL string) (*Authorization, error)

	// KeyAuthorization binds a challenge token to the account key. The
	// returned value is opaque and must be handed to the user verbatim.
	KeyAuthorization(token string) (string, error)

	// AcceptChallenge tells the server the challenge response is in place.
	// Idempotent: accepting an already-valid challenge is a no-op.
	AcceptChallenge(ctx context.Context, challengeURL string) error

	// FinalizeOrder submits the CSR (DER) for a ready order.
	FinalizeOrder(ctx context.Context, finalizeURL string, csrDER []byte) error

	// FetchCertificate downloads the issued certificate bundle.
	FetchCertificate(ctx context.Context, certURL string) (*Certificate, error)
}

type client struct {
	inner *xacme.Client
}

// NewClient builds a Client against the given directory URL, signing every
// request with the process-wide account key.
func NewClient(directoryURL string, accountKey crypto.Signer) Client {
	return &client{
		inner: &xacme.Client{
			Key:          accountKey,
			DirectoryURL: directoryURL,
		},
	}
}

func (c *client) RegisterAccount(ctx context.Context, email string) error {
	account := &xacme.Account{
		Contact: []string{"mailto:" + email},
	}

	_, err := c.inner.Register(ctx, account, xacme.AcceptTOS)
	if errors.Is(err, xacme.ErrAccountAlreadyExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to register ACME account: %w", err)
	}
	return nil
}

func (c *client) CreateOrder(ctx context.Context, identifiers []string) (*Order, error) {
	order, err := c.inner.AuthorizeOrder(ctx, xacme.DomainIDs(identifiers...))
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return convertOrder(order), nil
}

func (c *client) GetOrder(ctx context.Context, orderURL string) (*Order, error) {
	order, err := c.inner.GetOrder(ctx, orderURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return convertOrder(order), nil
}

func (c *client) GetAuthorization(ctx context.Context, authzURL string) (*Authorization, error) {
	authz, err := c.inner.GetAuthorization(ctx, authzURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization: %w", err)
	}

	out := &Authorization{
		URL:        authzURL,
		Status:     authz.Status,
		Identifier: authz.Identifier.Value,
		Wildcard:   authz.Wildcard,
	}
	for _, ch := range authz.Challenges {
		out.Challenges = append(out.Challenges, Challenge{
			URL:    ch.URI,
			Type:   ch.Type,
			Token:  ch.Token,
			Status: ch.Status,
		})
	}
	return out, nil
}

func (c *client) KeyAuthorization(token string) (string, error) {
	// "<token>.<account key thumbprint>", shared by http-01 and dns-01.
	keyAuth, err := c.inner.HTTP01ChallengeResponse(token)
	if err != nil {
		return "", fmt.Errorf("failed to compute key authorization: %w", err)
	}
	return keyAuth, nil
}

func (c *client) AcceptChallenge(ctx context.Context, challengeURL string) error {
	ch, err := c.inner.GetChallenge(ctx, challengeURL)
	if err != nil {
		return fmt.Errorf("failed to get challenge: %w", err)
	}
	if ch.Status == StatusValid {
		return nil
	}

	if _, err := c.inner.Accept(ctx, ch); err != nil {
		return fmt.Errorf("failed to accept challenge: %w", err)
	}
	return nil
}

func (c *client) FinalizeOrder(ctx context.Context, finalizeURL string, csrDER []byte) error {
	// The returned DER bundle is discarded here; certificate retrieval goes
	// through FetchCertificate once the order reports valid.
	if _, _, err := c.inner.CreateOrderCert(ctx, finalizeURL, csrDER, false); err != nil {
		return fmt.Errorf("failed to finalize order: %w", err)
	}
	return nil
}

func (c *client) FetchCertificate(ctx context.Context, certURL string) (*Certificate, error) {
	der, err := c.inner.FetchCert(ctx, certURL, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch certificate: %w", err)
	}
	if len(der) == 0 {
		return nil, errors.New("empty certificate bundle received from ACME server")
	}

	leaf := encodeCertPEM(der[0])
	var chain []byte
	for _, block := range der[1:] {
		chain = append(chain, encodeCertPEM(block)...)
	}

	return &Certificate{
		CertPEM:  string(leaf),
		ChainPEM: string(chain),
	}, nil
}

func convertOrder(order *xacme.Order) *Order {
	out := &Order{
		URL:         order.URI,
		Status:      order.Status,
		FinalizeURL: order.FinalizeURL,
		CertURL:     order.CertURL,
		AuthzURLs:   append([]string(nil), order.AuthzURLs...),
	}
	for _, id := range order.Identifiers {
		out.Identifiers = append(out.Identifiers, id.Value)
	}
	return out
}

func encodeCertPEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}
