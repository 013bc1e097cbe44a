// Package cookie manages HTTP cookies with shared secure defaults and
// optional HMAC-SHA256 signing.
//
//	m, err := cookie.NewFromConfig(cfg, cookie.WithSecure(isProduction))
//	if err != nil {
//		return err
//	}
//	_ = m.Write(w, "session_id", id)
//	id, err := m.Read(r, "session_id")
//
// Write and Read sign and verify when secrets are configured and fall back
// to plain values otherwise. Secrets are comma-separated in COOKIE_SECRETS;
// the first one signs, every one verifies.
package cookie
