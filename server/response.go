package server

import (
	"encoding/json"
	"net/http"

	"github.com/giantswarm/oauth2-engine/security"
)

// TokenTypeBearer is the token_type of every issued access token.
const TokenTypeBearer = "bearer"

// TokenResponse is the JSON body of a successful token request.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// Response is the fixed-shape result of an engine operation. Body is one
// of *TokenResponse, oautherr.Body or nil.
type Response struct {
	Status   int
	Header   http.Header
	Body     any
	Redirect string
}

// NewResponse returns an empty 200 response.
func NewResponse() *Response {
	return &Response{
		Status: http.StatusOK,
		Header: http.Header{},
	}
}

func newTokenResponse(body *TokenResponse) *Response {
	resp := NewResponse()
	resp.Body = body
	resp.Header.Set("Content-Type", "application/json")
	security.SetNoStore(resp.Header)
	return resp
}

// Write copies the response to w, replacing headers already set under the
// same names. A Redirect target takes precedence over the body.
func (r *Response) Write(w http.ResponseWriter) error {
	for k, vs := range r.Header {
		w.Header()[k] = append([]string(nil), vs...)
	}

	if r.Redirect != "" {
		w.Header().Set("Location", r.Redirect)
		w.WriteHeader(http.StatusFound)
		return nil
	}

	if r.Body == nil {
		w.WriteHeader(r.Status)
		return nil
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.Status)
	return json.NewEncoder(w).Encode(r.Body)
}
