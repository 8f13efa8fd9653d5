package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

const (
	// ContentTypeForm is the only body encoding the token and revocation
	// endpoints accept.
	ContentTypeForm = "application/x-www-form-urlencoded"

	contentTypeJSON      = "application/json"
	contentTypeMultipart = "multipart/form-data"

	// maxBodyBytes caps how much of a request body FromHTTP reads.
	maxBodyBytes = 1 << 20
)

// Request is an immutable snapshot of one inbound exchange. It is built
// once per request and never modified by the engine.
type Request struct {
	method string
	header http.Header
	query  url.Values
	body   url.Values
}

// NewRequest snapshots the given parts. The maps are copied so later
// changes by the caller are not observed.
func NewRequest(method string, header http.Header, query, body url.Values) *Request {
	return &Request{
		method: strings.ToUpper(method),
		header: cloneHeader(header),
		query:  cloneValues(query),
		body:   cloneValues(body),
	}
}

// FromHTTP snapshots an *http.Request. The body is read whatever the
// method, so that the engine can reject a bearer token sent in a GET body.
// Form-encoded and multipart bodies are parsed into body fields. JSON
// object bodies are parsed too, keeping only string members. Other
// encodings leave the body empty. r.Body is replaced with an in-memory copy
// so later handlers can still read it.
func FromHTTP(r *http.Request) (*Request, error) {
	body := url.Values{}

	if r.Body != nil && r.Body != http.NoBody {
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		r.Body = io.NopCloser(bytes.NewReader(raw))

		if len(raw) > 0 {
			body, err = parseBody(r.Header.Get("Content-Type"), raw)
			if err != nil {
				return nil, err
			}
		}
	}

	return &Request{
		method: strings.ToUpper(r.Method),
		header: r.Header.Clone(),
		query:  r.URL.Query(),
		body:   body,
	}, nil
}

func parseBody(contentType string, raw []byte) (url.Values, error) {
	body := url.Values{}

	switch mediaType(contentType) {
	case ContentTypeForm:
		parsed, err := url.ParseQuery(string(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse form body: %w", err)
		}
		return parsed, nil
	case contentTypeMultipart:
		return parseMultipart(contentType, raw)
	case contentTypeJSON:
		var fields map[string]any
		if json.Unmarshal(raw, &fields) == nil {
			for k, v := range fields {
				if s, ok := v.(string); ok {
					body.Set(k, s)
				}
			}
		}
	}
	return body, nil
}

// parseMultipart collects the non-file parts of a multipart/form-data
// body, keeping the first value of each field.
func parseMultipart(contentType string, raw []byte) (url.Values, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["boundary"] == "" {
		return nil, errors.New("failed to parse multipart body: missing boundary")
	}

	fields := url.Values{}
	mr := multipart.NewReader(bytes.NewReader(raw), params["boundary"])
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return fields, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse multipart body: %w", err)
		}

		name := part.FormName()
		if name == "" || part.FileName() != "" || fields.Has(name) {
			_ = part.Close()
			continue
		}
		value, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse multipart body: %w", err)
		}
		fields.Set(name, string(value))
	}
}

// Method returns the upper-case HTTP method.
func (r *Request) Method() string { return r.method }

// Header returns the first value of the named header.
func (r *Request) Header(name string) string { return r.header.Get(name) }

// HasHeader reports whether the named header was sent, even empty.
func (r *Request) HasHeader(name string) bool {
	_, ok := r.header[http.CanonicalHeaderKey(name)]
	return ok
}

// Query returns the first value of the named query parameter.
func (r *Request) Query(name string) string { return r.query.Get(name) }

// Body returns the first value of the named body field.
func (r *Request) Body(name string) string { return r.body.Get(name) }

// BodyValues returns a copy of every body field.
func (r *Request) BodyValues() url.Values { return cloneValues(r.body) }

// ContentType returns the media type of the body without parameters.
func (r *Request) ContentType() string {
	return mediaType(r.header.Get("Content-Type"))
}

// IsForm reports whether the body is form-url-encoded.
func (r *Request) IsForm() bool {
	return r.ContentType() == ContentTypeForm
}

// BasicAuth returns the credentials of an HTTP Basic Authorization header.
// Both parts are form-decoded as required by RFC 6749 section 2.3.1.
func (r *Request) BasicAuth() (username, password string, ok bool) {
	hr := http.Request{Header: r.header}
	username, password, ok = hr.BasicAuth()
	if !ok {
		return "", "", false
	}
	if u, err := url.QueryUnescape(username); err == nil {
		username = u
	}
	if p, err := url.QueryUnescape(password); err == nil {
		password = p
	}
	return username, password, true
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

func cloneHeader(h http.Header) http.Header {
	if h == nil {
		return http.Header{}
	}
	return h.Clone()
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = slices.Clone(vs)
	}
	return out
}
