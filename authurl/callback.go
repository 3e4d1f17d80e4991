package authurl

import (
	"net/url"
	"strings"

	"github.com/jrsteele09/go-portfolio/internal/errors"
)

// Callback query parameter names accepted from the login hub.
const (
	ParamCode        = "code"
	ParamToken       = "token"
	ParamAccessToken = "access_token"
	ParamIDToken     = "id_token"
)

// CredentialKind identifies which callback parameter a credential came from.
type CredentialKind int

const (
	KindUnknown CredentialKind = iota
	KindToken
	KindAccessToken
	KindIDToken
	KindAuthorizationCode
)

func (k CredentialKind) String() string {
	switch k {
	case KindToken:
		return ParamToken
	case KindAccessToken:
		return ParamAccessToken
	case KindIDToken:
		return ParamIDToken
	case KindAuthorizationCode:
		return ParamCode
	default:
		return "unknown"
	}
}

// Credential is the opaque value extracted from a callback URL.
type Credential struct {
	Kind  CredentialKind
	Value string
}

// priority lists callback keys in selection order.
var priority = []struct {
	param string
	kind  CredentialKind
}{
	{ParamToken, KindToken},
	{ParamAccessToken, KindAccessToken},
	{ParamIDToken, KindIDToken},
	{ParamCode, KindAuthorizationCode},
}

// HasCredentialParam reports whether any recognized credential key is present, empty or not.
func HasCredentialParam(q url.Values) bool {
	for _, p := range priority {
		if _, ok := q[p.param]; ok {
			return true
		}
	}
	return false
}

// ParseCallback selects the credential carried by a callback query.
//
// It returns errors.ErrNoCredential when none of the recognized keys is present and
// errors.ErrMalformedCallback when keys are present but none carries a usable value.
func ParseCallback(q url.Values) (Credential, error) {
	if !HasCredentialParam(q) {
		return Credential{}, errors.ErrNoCredential
	}
	for _, p := range priority {
		for _, v := range q[p.param] {
			if v = strings.TrimSpace(v); v != "" {
				return Credential{Kind: p.kind, Value: v}, nil
			}
		}
	}
	return Credential{}, errors.ErrMalformedCallback
}
