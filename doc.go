// Package console implements the authentication and session subsystem of the
// opspulse security-operations dashboard: admin registration, credential
// verification, signed session tokens, and the cookie/bearer transport that
// carries them.
//
// Sessions are stateless. A login issues a signed JWT with a fixed TTL, the
// token travels in an HttpOnly cookie or an Authorization header, and every
// protected route is gated by middleware/tokenware, which validates the token
// and injects the decoded identity into the request context. The server keeps
// no session records; logout only clears the client transport.
package console
