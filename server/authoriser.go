package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/giantswarm/oauth2-engine/instrumentation"
	"github.com/giantswarm/oauth2-engine/oautherr"
	"github.com/giantswarm/oauth2-engine/security"
	"github.com/giantswarm/oauth2-engine/storage"
)

// Bearer validation outcomes recorded in metrics.
const (
	bearerOutcomeValid   = "valid"
	bearerOutcomeInvalid = "invalid"
	bearerOutcomeExpired = "expired"
	bearerOutcomeMissing = "missing"
)

// Authorisation is the result of a successful bearer check.
type Authorisation struct {
	Token *storage.AccessToken

	// User is token.User when set, else a user carrying token.UserID.
	User *storage.User
}

// Authenticate validates the bearer token of a protected-resource request
// (RFC 6750 section 2). Exactly one of the Authorization header, the
// access_token query parameter and the access_token form field may carry
// the token.
func (s *Server) Authenticate(ctx context.Context, req *Request) (*Authorisation, error) {
	ctx, span := s.inst.Tracer("server").Start(ctx, "oauth.authorise")
	defer span.End()

	auth, outcome, err := s.authenticate(ctx, req)
	s.inst.Metrics().RecordBearerValidation(ctx, outcome)
	if err != nil {
		instrumentation.RecordError(span, err)
		s.logFailure(ctx, "Bearer token rejected", err)
		return nil, err
	}

	instrumentation.AddGrantAttributes(span, "", auth.Token.ClientID, auth.User.ID, auth.Token.Scope)
	instrumentation.SetSpanSuccess(span)
	return auth, nil
}

func (s *Server) authenticate(ctx context.Context, req *Request) (*Authorisation, string, error) {
	tokens, ok := s.model.(storage.AccessTokenGetter)
	if !ok {
		return nil, bearerOutcomeInvalid, oautherr.InvalidArgument("bearer authorisation requires the model to implement AccessTokenGetter")
	}

	bearer, err := extractBearerToken(req)
	if err != nil {
		return nil, bearerOutcomeMissing, err
	}

	token, err := call(ctx, s.inst, "getAccessToken", func(ctx context.Context) (*storage.AccessToken, error) {
		return tokens.GetAccessToken(ctx, bearer)
	})
	if err != nil {
		return nil, bearerOutcomeInvalid, err
	}
	if token == nil {
		err := oautherr.InvalidToken("The access token provided is invalid.").WithStatus(s.Config.InvalidTokenStatus)
		return nil, bearerOutcomeInvalid, err
	}

	if security.IsTokenExpired(token.ExpiresAt, s.now()) {
		return nil, bearerOutcomeExpired, oautherr.InvalidToken("The access token provided has expired.").WithStatus(http.StatusUnauthorized)
	}

	user := token.User
	if user == nil {
		user = &storage.User{ID: token.UserID}
	}
	return &Authorisation{Token: token, User: user}, bearerOutcomeValid, nil
}

// extractBearerToken applies the RFC 6750 extraction rules: header first,
// then query, then form body. Empty candidates do not count.
func extractBearerToken(req *Request) (string, error) {
	var candidates []string

	if header := req.Header("Authorization"); header != "" {
		token, ok := parseBearerHeader(header)
		if !ok {
			return "", oautherr.InvalidRequest("Malformed auth header")
		}
		candidates = append(candidates, token)
	}

	if token := req.Query("access_token"); token != "" {
		candidates = append(candidates, token)
	}

	if token := req.Body("access_token"); token != "" {
		if req.Method() == http.MethodGet {
			return "", oautherr.InvalidRequest("Method cannot be GET When putting the token in the body.")
		}
		if !req.IsForm() {
			return "", oautherr.InvalidRequest("When putting the token in the body, content type must be application/x-www-form-urlencoded.")
		}
		candidates = append(candidates, token)
	}

	switch len(candidates) {
	case 0:
		return "", oautherr.InvalidRequest("The access token was not found")
	case 1:
		return candidates[0], nil
	default:
		return "", oautherr.InvalidRequest("Only one method may be used to authenticate at a time (Auth header, GET or POST).")
	}
}

// parseBearerHeader returns the token of a "Bearer <token>" header. The
// scheme is matched case-insensitively.
func parseBearerHeader(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
