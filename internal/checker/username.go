package checker

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidUsername is returned for input violating the username contract.
// It is the only error the engine surfaces as a hard failure, and it is
// raised before any network activity.
var ErrInvalidUsername = errors.New("checker: invalid username")

// usernamePattern is the allowed post-normalization alphabet and length.
var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{1,32}$`)

// Normalize lowercases the raw input, trims surrounding whitespace, and
// strips a leading @. "@Foo", "foo" and " FOO " all normalize to "foo".
func Normalize(raw string) string {
	u := strings.TrimSpace(raw)
	u = strings.TrimPrefix(u, "@")
	return strings.ToLower(u)
}

// Validate checks a normalized username against the allowed alphabet
// ([a-z0-9_]) and length bound (1-32).
func Validate(username string) error {
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}
	return nil
}
