// Package session keeps per-browser session records in a kv.Store, keyed by
// an identifier carried in the session_id cookie.
//
// A request without a valid cookie, or whose record is missing or older
// than the session TTL, gets a fresh record. Handlers set the cookie only
// when GetOrCreate reports the id as newly issued:
//
//	s, issued, err := sessions.GetOrCreate(ctx, r)
//	if err != nil {
//		return response.Error(err)
//	}
//	if issued {
//		_ = sessions.SetCookie(w, s.ID)
//	}
//
// Mutations (UpdatePreferences, RecordVisit, RegistrationStarted,
// RegistrationCompleted, Authenticate) rewrite the whole record and refresh
// its TTL. Concurrent writers of one session race and the last one wins.
package session
