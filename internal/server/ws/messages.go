// Package ws carries the persistent client channel: a websocket speaking
// JSON messages discriminated by a "type" field, plus plain-text
// ping/pong keepalives.
package ws

import "encoding/json"

// Message type discriminators.
const (
	typeIntroduction             = "introduction"
	typeGreeting                 = "greeting"
	typeLoginAuthRequest         = "login_authentication_request"
	typeRegisterRequest          = "register_request"
	typeRegisterPrecheck         = "register_precheck"
	typeRegisterPrecheckResponse = "register_precheck_response"
	typeAuthSuccess              = "auth_success"
	typeAuthFailure              = "auth_failure"
	typeOwnUserInfoRequest       = "own_user_information_request"
	typeOwnUserInfoResponse      = "own_user_information_response"
	typeSerialisationError       = "serialisation_error"
)

// envelope is the union of every inbound message's fields; Type selects
// which ones are meaningful.
type envelope struct {
	Type string `json:"type"`

	// introduction
	ClientKind string  `json:"client_kind,omitempty"`
	TryRevive  *string `json:"try_revive,omitempty"`

	// login_authentication_request
	EmailUsername string `json:"email_username,omitempty"`

	// register_request / register_precheck
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

type greetingMessage struct {
	Type     string `json:"type"`
	Greeting string `json:"greeting"`
}

type authSuccessMessage struct {
	Type     string `json:"type"`
	Token    string `json:"token"`
	Username string `json:"username"`
}

type authFailureMessage struct {
	Type string `json:"type"`
}

type precheckResponseMessage struct {
	Type string `json:"type"`
	Ok   bool   `json:"ok"`
	Why  string `json:"why"`
}

type ownUserInfoMessage struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Email    string `json:"email"`
	UUID     string `json:"uuid"`
}

type serialisationErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func greeting(text string) []byte {
	return mustMarshal(greetingMessage{typeGreeting, text})
}

func authSuccess(token, user string) []byte {
	return mustMarshal(authSuccessMessage{typeAuthSuccess, token, user})
}

func authFailure() []byte {
	return mustMarshal(authFailureMessage{typeAuthFailure})
}

func precheckResponse(ok bool, why string) []byte {
	return mustMarshal(precheckResponseMessage{typeRegisterPrecheckResponse, ok, why})
}

func ownUserInfo(username, email, id string) []byte {
	return mustMarshal(ownUserInfoMessage{typeOwnUserInfoResponse, username, email, id})
}

// mustMarshal falls back to a hand-built serialisation_error body; these
// structs contain nothing that can actually fail to encode.
func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		e, _ := json.Marshal(serialisationErrorMessage{typeSerialisationError, err.Error()})
		return e
	}
	return b
}
