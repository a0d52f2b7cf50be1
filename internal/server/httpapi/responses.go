package httpapi

import (
	"encoding/json"
	"net/http"
)

// Bodies mirror what the front-end already parses, including the
// capitalised "Ok"/"Why"/"Errorvalue" keys and the text/json content type.

type statusResponse struct {
	Ok         bool    `json:"Ok"`
	Why        string  `json:"Why,omitempty"`
	Errorvalue *string `json:"Errorvalue,omitempty"`
}

func withErrorvalue(ok bool, errorvalue string) statusResponse {
	return statusResponse{Ok: ok, Errorvalue: &errorvalue}
}

// pageResponse is the body of a front-end page fetch. Message codes:
//
//	1:   "It seems your session has expired."
//	2:   "This page does not exist according to the instance server."
//	33:  notification centre special page
//	899: template marker, accompanies 9xx codes
//	901: homepage timelines template
type pageResponse struct {
	Main    string  `json:"main"`
	Side    string  `json:"side"`
	Message []int64 `json:"message"`
}

type updateResponse struct {
	Instance instanceInfo `json:"instance"`
	User     safeUser     `json:"user"`
}

type instanceInfo struct {
	IID      string `json:"iid"`
	LastSync int64  `json:"last_sync"`
}

// safeUser is the user projection that may leave the server: no password
// hash, no internal fields.
type safeUser struct {
	Username string `json:"username"`
	ID       int64  `json:"id"`
	Email    string `json:"email"`
}

type homePageData struct {
	Username     string `json:"username"`
	InstanceName string `json:"instance_name"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Type", "text/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
