package oauth_test

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	oauth "github.com/giantswarm/oauth2-engine"
	"github.com/giantswarm/oauth2-engine/server"
	"github.com/giantswarm/oauth2-engine/storage"
	"github.com/giantswarm/oauth2-engine/storage/memory"
)

// Mount the engine on a plain ServeMux and protect a resource with it.
func Example() {
	logger := slog.New(slog.DiscardHandler)
	store := memory.New(memory.WithLogger(logger))
	defer store.Stop()

	err := store.SaveClient(context.Background(), &storage.Client{
		ID:     "backend",
		Grants: []string{server.GrantTypeClientCredentials},
	}, "s3cret")
	if err != nil {
		log.Fatal(err)
	}

	srv, err := oauth.NewServer(store, &oauth.Config{
		Issuer: "https://auth.example.com",
		Server: server.Config{Grants: []string{server.GrantTypeClientCredentials}},
	}, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = srv.Shutdown(context.Background()) }()

	handler := oauth.NewHandler(srv, logger)

	mux := http.NewServeMux()
	mux.HandleFunc(oauth.TokenPath, handler.ServeToken)
	mux.Handle("/hello", handler.Authorise(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth, _ := oauth.AuthorisationFromContext(r.Context())
		fmt.Fprintf(w, "hello %s", auth.Token.ClientID)
	})))

	form := url.Values{"grant_type": {server.GrantTypeClientCredentials}}
	req := httptest.NewRequest(http.MethodPost, oauth.TokenPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("backend", "s3cret")

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	fmt.Println(w.Code)
	// Output: 200
}
