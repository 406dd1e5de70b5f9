package redis

import "strings"

const (
	keyNamespace      = "cs"
	idempotencyPrefix = "idempotency"
	lockPrefix        = "lock"
)

// IdempotencyKey namespaces an Idempotency-Key header value under its scope.
func (c *Client) IdempotencyKey(scope, id string) string {
	return buildKey(idempotencyPrefix, scope, id)
}

func (c *Client) LockKey(name string) string {
	return buildKey(lockPrefix, name)
}

// buildKey joins non-blank parts under the service namespace, e.g.
// cs:lock:checkout:<id>.
func buildKey(parts ...string) string {
	b := strings.Builder{}
	b.WriteString(keyNamespace)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}
