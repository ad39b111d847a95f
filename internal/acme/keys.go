package acme

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"os"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/sirupsen/logrus"
)

// LoadOrCreateAccountKey loads the ACME account key from path, generating
// and persisting a new EC key on first start. Losing this file forces
// re-registration with the CA and resets account-level rate-limit history,
// so it is the one durable artifact the service keeps.
func LoadOrCreateAccountKey(path string) (crypto.Signer, error) {
	if data, err := os.ReadFile(path); err == nil {
		key, err := certcrypto.ParsePEMPrivateKey(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse account key %s: %w", path, err)
		}
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, fmt.Errorf("account key %s does not support signing", path)
		}
		logrus.WithField("path", path).Info("Loaded existing ACME account key")
		return signer, nil
	}

	key, err := certcrypto.GeneratePrivateKey(certcrypto.EC256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate account key: %w", err)
	}

	if err := os.WriteFile(path, certcrypto.PEMEncode(key), 0o600); err != nil {
		return nil, fmt.Errorf("failed to save account key %s: %w", path, err)
	}

	logrus.WithField("path", path).Info("Created new ACME account key")
	return key.(crypto.Signer), nil
}

// NewCertificateKey generates the private key for one certificate request
// and returns it with its PEM encoding. The key is owned by that request
// alone and is never written to disk.
func NewCertificateKey() (crypto.Signer, string, error) {
	key, err := certcrypto.GeneratePrivateKey(certcrypto.EC256)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate certificate key: %w", err)
	}
	return key.(crypto.Signer), string(certcrypto.PEMEncode(key)), nil
}

// NewCSR builds a DER-encoded certificate signing request covering every
// order identifier.
func NewCSR(key crypto.Signer, commonName string, dnsNames []string) ([]byte, error) {
	template := &x509.CertificateRequest{
		Subject:  pkix.Name{CommonName: commonName},
		DNSNames: dnsNames,
	}

	der, err := x509.CreateCertificateRequest(rand.Reader, template, key)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSR: %w", err)
	}
	return der, nil
}
