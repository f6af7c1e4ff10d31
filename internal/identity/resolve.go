package identity

// SessionStore abstracts the caller's ephemeral session. Guest identifiers
// stay stable across requests only as long as the session does.
type SessionStore interface {
	// Existing returns the current session key, if one exists.
	Existing() (string, bool)
	// Ensure returns the current session key, creating a session first if
	// the caller has none.
	Ensure() string
}

// Resolve picks the buyer identity for a request. The order is fixed and
// deterministic: an authenticated user id wins, then an explicitly supplied
// identity key, then a guest identity tied to the caller's session
// (creating the session if absent).
func Resolve(authenticatedID, explicitKey string, sessions SessionStore) BuyerIdentity {
	if authenticatedID != "" {
		return Authenticated(authenticatedID)
	}
	if explicitKey != "" {
		return FromKey(explicitKey)
	}
	return Guest(sessions.Ensure())
}
