package validators

import (
	"errors"
	"strings"
)

var ErrMissingToken = errors.New("missing bearer token")

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(header string) (string, error) {
	value := strings.TrimSpace(header)
	if len(value) < 7 || !strings.EqualFold(value[:7], "bearer ") {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(value[7:])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
