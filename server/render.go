package server

import (
	"net/http"

	"github.com/giantswarm/oauth2-engine/oautherr"
	"github.com/giantswarm/oauth2-engine/security"
)

// RenderError maps any error to its OAuth error response. Errors that are
// not *oautherr.Error render as server_error so backend details never
// reach the client.
func (s *Server) RenderError(err error) *Response {
	oe := oautherr.From(err)
	if oe == nil {
		oe = oautherr.Serverf("nil error rendered")
	}

	resp := NewResponse()
	resp.Status = oe.StatusCode()
	resp.Body = oe.Body()
	security.SetNoStore(resp.Header)

	if resp.Status == http.StatusUnauthorized {
		switch oe.Kind {
		case oautherr.KindInvalidClient:
			resp.Header.Set("WWW-Authenticate", `Basic realm="`+s.Config.Realm+`"`)
		case oautherr.KindInvalidToken:
			resp.Header.Set("WWW-Authenticate", security.BearerChallenge(s.Config.Realm, oe.Code(), oe.Description))
		}
	}

	return resp
}
