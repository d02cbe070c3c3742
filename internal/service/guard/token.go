package guard

import (
	"crypto/subtle"
	"fmt"

	"github.com/sandevgo/tuskrelay/internal/core"
)

// WidgetTokenHeader carries the shared secret of the front-end widget.
const WidgetTokenHeader = "X-Widget-Token"

// checkToken compares in constant time. An unset expected token is a
// server misconfiguration, never "no token required".
func checkToken(supplied, expected string) error {
	if expected == "" {
		return fmt.Errorf("%w: widget token is not set", core.ErrNotConfigured)
	}
	if supplied == "" {
		return fmt.Errorf("%w: missing %s header", core.ErrUnauthorized, WidgetTokenHeader)
	}
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(expected)) != 1 {
		return fmt.Errorf("%w: invalid widget token", core.ErrUnauthorized)
	}
	return nil
}
