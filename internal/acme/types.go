package acme

// ACME object status values (RFC 8555 §7.1.6)
const (
	StatusPending    = "pending"
	StatusReady      = "ready"
	StatusProcessing = "processing"
	StatusValid      = "valid"
	StatusInvalid    = "invalid"
)

// Challenge type identifiers
const (
	ChallengeHTTP01 = "http-01"
	ChallengeDNS01  = "dns-01"
)

// Order is a snapshot of an ACME order. The URL is the stable handle;
// everything else is refreshed on each GetOrder call.
type Order struct {
	URL         string
	Status      string
	Identifiers []string
	AuthzURLs   []string
	FinalizeURL string
	CertURL     string
}

// Authorization is a per-identifier proof-of-control record within an order.
// Identifier carries the bare DNS name; Wildcard marks the authorization
// that covers "*.<Identifier>".
type Authorization struct {
	URL        string
	Status     string
	Identifier string
	Wildcard   bool
	Challenges []Challenge
}

// Challenge is one concrete validation method offered by an authorization.
type Challenge struct {
	URL    string
	Type   string
	Token  string
	Status string
}

// Certificate is the issued PEM bundle: the leaf plus the issuer chain.
type Certificate struct {
	CertPEM  string
	ChainPEM string
}
