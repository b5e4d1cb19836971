package auth

import (
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// BearerFromHeaders extracts the token from an "authorization: Bearer <t>"
// header. Both the header name and the scheme match case-insensitively, so
// metadata.MD and http.Header can be passed as they are.
func BearerFromHeaders(h map[string][]string) (string, bool) {
	for k, values := range h {
		if !strings.EqualFold(k, common.AuthorizationHeaderName) || len(values) == 0 {
			continue
		}

		scheme, token, ok := strings.Cut(strings.TrimSpace(values[0]), " ")
		if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
			return "", false
		}
		token = strings.TrimSpace(token)
		if token == "" {
			return "", false
		}
		return token, true
	}
	return "", false
}
