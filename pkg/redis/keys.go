package redis

import "strings"

const keyNamespace = "oc"

// ClientStateKey addresses one persisted storefront key of a visitor session.
func (c *Client) ClientStateKey(sessionID, key string) string {
	return buildKey("client", sessionID, key)
}

func (c *Client) RateLimitKey(scope string) string {
	return buildKey("rate_limit", scope)
}

func (c *Client) LockKey(name string) string {
	return buildKey("lock", name)
}

func (c *Client) AccessSessionKey(accessID string) string {
	return buildKey("session", "access", accessID)
}

// IdempotencyKey namespaces a client-supplied Idempotency-Key within scope.
func (c *Client) IdempotencyKey(scope, id string) string {
	return buildKey("idempotency", scope, id)
}

// buildKey joins non-empty parts under the namespace with ":".
func buildKey(parts ...string) string {
	var b strings.Builder
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
