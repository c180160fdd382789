package auth

import (
	"errors"
	"net/http"
	"strings"

	"bookshelf-restful/apperrors"

	restful "github.com/emicklei/go-restful/v3"
)

// principalAttribute is the request attribute carrying the resolved
// Principal between filters and handlers.
const principalAttribute = "principal"

// Authenticator is the boundary glue that turns a bearer token into a
// resolved Principal: TokenService.Verify then IdentityResolver.Resolve.
type Authenticator struct {
	tokens     *TokenService
	identities *IdentityResolver
}

func NewAuthenticator(tokens *TokenService, identities *IdentityResolver) *Authenticator {
	return &Authenticator{tokens: tokens, identities: identities}
}

// Filter returns a go-restful filter that authenticates the request
// and stores the Principal for downstream handlers. All three
// authentication failures map to 401 here.
func (a *Authenticator) Filter() restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		authHeader := req.HeaderParameter("Authorization")
		if authHeader == "" {
			writeAuthError(resp, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			writeAuthError(resp, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := a.tokens.Verify(parts[1])
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenExpired) {
				writeAuthError(resp, http.StatusUnauthorized, "Token expired")
			} else {
				writeAuthError(resp, http.StatusUnauthorized, "Invalid token")
			}
			return
		}

		principal, err := a.identities.Resolve(claims)
		if err != nil {
			// An internal resolver failure is indistinguishable from an
			// unknown subject to the caller; both deny access.
			writeAuthError(resp, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		req.SetAttribute(principalAttribute, principal)
		chain.ProcessFilter(req, resp)
	}
}

// RequirePermission returns a filter enforcing a single-permission
// gate over the Principal resolved by Filter. It must run after it.
func RequirePermission(permissionName string) restful.FilterFunction {
	guard := Require(permissionName)
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		principal, ok := PrincipalFrom(req)
		if !ok {
			writeAuthError(resp, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		if err := guard(principal); err != nil {
			writeAuthError(resp, http.StatusForbidden, "Insufficient permissions")
			return
		}
		chain.ProcessFilter(req, resp)
	}
}

// PrincipalFrom extracts the Principal stored by Filter.
func PrincipalFrom(req *restful.Request) (*Principal, bool) {
	principal, ok := req.Attribute(principalAttribute).(*Principal)
	return principal, ok
}

func writeAuthError(resp *restful.Response, status int, message string) {
	_ = resp.WriteHeaderAndJson(status, map[string]string{"message": message}, restful.MIME_JSON)
}
