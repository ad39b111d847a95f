package issuance

import "time"

// Certificate request lifecycle states
const (
	StatusPending    = "pending"
	StatusValidating = "validating"
	StatusValid      = "valid"
	StatusInvalid    = "invalid"
	StatusFailed     = "failed"
)

// Validation methods a caller may request
const (
	MethodHTTP = "http"
	MethodDNS  = "dns"
)

// SelectedChallenge ties one order identifier to the challenge chosen for
// it, together with the material the user must publish.
type SelectedChallenge struct {
	Domain           string `json:"domain"`     // display name, wildcard form preserved
	Identifier       string `json:"identifier"` // bare DNS name as the CA reports it
	AuthzURL         string `json:"-"`
	Type             string `json:"type"`
	Token            string `json:"token"`
	URL              string `json:"url"`
	KeyAuthorization string `json:"keyAuthorization"`
	RecordName       string `json:"recordName,omitempty"`  // dns-01: TXT record name
	RecordValue      string `json:"recordValue,omitempty"` // dns-01: TXT record value
	HTTPPath         string `json:"httpPath,omitempty"`    // http-01: well-known path
}

// CertificateRequest is the unit of work the orchestrator drives from order
// creation to certificate delivery. Entries are stored by value and replaced
// whole; they are never shared across goroutines.
type CertificateRequest struct {
	ID                  string
	Domain              string
	Email               string
	Method              string
	Status              string
	OrderURL            string
	Challenges          []SelectedChallenge
	KeyPEM              string
	CSR                 []byte
	CreatedAt           time.Time
	ValidationStartedAt time.Time
	Error               string
}

// clone returns a deep copy so store readers never alias a writer's slices.
func (r CertificateRequest) clone() CertificateRequest {
	out := r
	out.Challenges = append([]SelectedChallenge(nil), r.Challenges...)
	out.CSR = append([]byte(nil), r.CSR...)
	return out
}
