package issuance

import (
	"fmt"

	"certhub/internal/acme"
)

// challengeTypeFor maps a caller-facing validation method to the ACME
// challenge type it corresponds to.
func challengeTypeFor(method string) (string, error) {
	switch method {
	case MethodHTTP:
		return acme.ChallengeHTTP01, nil
	case MethodDNS:
		return acme.ChallengeDNS01, nil
	default:
		return "", fmt.Errorf("%w: unknown validation method %q", ErrInvalidInput, method)
	}
}

// selectChallenges picks exactly one challenge of the method's type from
// each authorization. Authorizations already valid (for example from a
// recently reused order) are skipped. An authorization that offers no
// challenge of the required type fails the whole selection.
func selectChallenges(authzs []acme.Authorization, method string) ([]SelectedChallenge, error) {
	wantType, err := challengeTypeFor(method)
	if err != nil {
		return nil, err
	}

	selected := make([]SelectedChallenge, 0, len(authzs))
	for _, authz := range authzs {
		if authz.Status == acme.StatusValid {
			continue
		}

		var found *acme.Challenge
		for i := range authz.Challenges {
			if authz.Challenges[i].Type == wantType {
				found = &authz.Challenges[i]
				break
			}
		}
		if found == nil {
			return nil, fmt.Errorf("%w: authorization for %q offers no %s challenge",
				ErrChallengeUnavailable, authz.Identifier, wantType)
		}

		domain := authz.Identifier
		if authz.Wildcard {
			domain = "*." + domain
		}
		selected = append(selected, SelectedChallenge{
			Domain:     domain,
			Identifier: authz.Identifier,
			AuthzURL:   authz.URL,
			Type:       found.Type,
			Token:      found.Token,
			URL:        found.URL,
		})
	}
	return selected, nil
}
