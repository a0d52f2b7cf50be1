package common

// SessionCookieName is the cookie carrying the client's session claim.
const SessionCookieName = "lumina_session"

// UnknownUserID is the sentinel user id meaning "no user in this claim".
const UnknownUserID int64 = -100
