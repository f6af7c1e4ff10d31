package identity

import (
	"strings"

	"github.com/google/uuid"
)

// GuestPrefix marks synthesized guest identifiers in persisted rows so they
// stay distinguishable from authenticated user ids.
const GuestPrefix = "guest_"

// BuyerIdentity is the owner of a cart or order: either a stable external
// user id (authenticated) or a transient guest id derived from the caller's
// session.
type BuyerIdentity struct {
	id    string
	guest bool
}

func Authenticated(userID string) BuyerIdentity {
	return BuyerIdentity{id: userID}
}

// Guest builds a guest identity from a session key. The key is prefixed so
// the persisted form is recognizable without carrying the flag around.
func Guest(sessionKey string) BuyerIdentity {
	if !strings.HasPrefix(sessionKey, GuestPrefix) {
		sessionKey = GuestPrefix + sessionKey
	}
	return BuyerIdentity{id: sessionKey, guest: true}
}

// NewGuest synthesizes a fresh guest identity for a brand-new session.
func NewGuest() BuyerIdentity {
	return Guest(uuid.NewString())
}

// FromKey reconstructs an identity from its persisted string form.
func FromKey(key string) BuyerIdentity {
	if strings.HasPrefix(key, GuestPrefix) {
		return BuyerIdentity{id: key, guest: true}
	}
	return BuyerIdentity{id: key}
}

// Key is the persisted string form: "guest_<session>" for guests, the raw
// external user id otherwise.
func (b BuyerIdentity) Key() string { return b.id }

func (b BuyerIdentity) IsGuest() bool { return b.guest }

func (b BuyerIdentity) IsZero() bool { return b.id == "" }

func (b BuyerIdentity) String() string { return b.id }
