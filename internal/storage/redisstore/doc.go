// Package redisstore implements the session repository on Redis.
//
// Each session is a JSON value under <prefix><token_hash>. Sessions with an
// expiry carry a matching Redis TTL, so most expired sessions vanish
// without help; DeleteExpiredSessions sweeps the rest. Uniqueness is
// enforced on the token hash only (SET NX).
package redisstore
