package session

import (
	"net/http"

	"github.com/gorilla/securecookie"

	"github.com/lumina-social/lumina/internal/common"
)

// Claim is what a client asserts about itself on every request. It travels
// in a signed and encrypted cookie; an absent or undecodable cookie yields
// the anonymous claim.
type Claim struct {
	UserID   int64
	Username string
	Validity int64
}

// AnonymousClaim is the claim of a client with no session.
func AnonymousClaim() Claim {
	return Claim{UserID: common.UnknownUserID}
}

// Codec encodes claims into the session cookie and back. Cookies are
// authenticated with HMAC and encrypted with AES via securecookie, so
// claims cannot be forged or inspected client side.
type Codec struct {
	sc *securecookie.SecureCookie
}

func NewCodec(hashKey, blockKey []byte) *Codec {
	return &Codec{sc: securecookie.New(hashKey, blockKey)}
}

// Write sets the session cookie carrying the claim.
func (c *Codec) Write(w http.ResponseWriter, claim Claim) error {
	encoded, err := c.sc.Encode(common.SessionCookieName, claim)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read extracts the claim from the request cookie. Any failure, be it a
// missing cookie, a bad signature or a stale encoding, degrades to the
// anonymous claim rather than an error.
func (c *Codec) Read(r *http.Request) Claim {
	cookie, err := r.Cookie(common.SessionCookieName)
	if err != nil {
		return AnonymousClaim()
	}
	var claim Claim
	if err := c.sc.Decode(common.SessionCookieName, cookie.Value, &claim); err != nil {
		return AnonymousClaim()
	}
	return claim
}

// Purge overwrites the session cookie with an expired empty one.
func (c *Codec) Purge(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
