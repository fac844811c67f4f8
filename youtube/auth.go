package youtube

import (
	"context"
	"encoding/gob"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	yt "google.golang.org/api/youtube/v3"
)

var defaultScopes = []string{
	yt.YoutubeUploadScope,
	yt.YoutubeForceSslScope,
}

// Authenticator owns the lifecycle of the persisted OAuth credential:
// load from disk, validity check, silent refresh, interactive fallback, and
// persist-after-change. The token file is a machine-local gob blob; deleting
// it forces full re-authentication on next use.
type Authenticator struct {
	ClientSecretsPath string
	TokenPath         string
	Scopes            []string

	// Swappable in tests.
	refresh   func(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token) (*oauth2.Token, error)
	authorize func(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)
}

func NewAuthenticator(clientSecretsPath, tokenPath string) *Authenticator {
	return &Authenticator{
		ClientSecretsPath: clientSecretsPath,
		TokenPath:         tokenPath,
		Scopes:            defaultScopes,
		refresh:           silentRefresh,
		authorize:         runLocalFlow,
	}
}

// Token returns a credential that is valid right now. It refreshes silently
// when possible and falls back to the interactive browser flow only when the
// silent paths are exhausted. Every new or refreshed credential is persisted
// before this returns.
func (a *Authenticator) Token(ctx context.Context) (*oauth2.Token, error) {
	cfg, err := a.oauthConfig()
	if err != nil {
		return nil, err
	}

	tok := a.loadToken()
	if tok != nil && tok.Valid() {
		return tok, nil
	}

	if tok != nil && tok.RefreshToken != "" {
		fresh, err := a.refresh(ctx, cfg, tok)
		if err == nil {
			if err := a.saveToken(fresh); err != nil {
				return nil, err
			}
			return fresh, nil
		}
		log.Printf("[auth] Refresh failed, requiring re-authentication: %v", err)
	}

	fresh, err := a.authorize(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("interactive authorization: %w", err)
	}
	if err := a.saveToken(fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// Client returns an authorized HTTP client backed by a currently valid token.
func (a *Authenticator) Client(ctx context.Context) (*http.Client, error) {
	tok, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := a.oauthConfig()
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, cfg.TokenSource(ctx, tok)), nil
}

func (a *Authenticator) oauthConfig() (*oauth2.Config, error) {
	b, err := os.ReadFile(a.ClientSecretsPath)
	if err != nil {
		return nil, fmt.Errorf("read client secrets: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, a.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets: %w", err)
	}
	return cfg, nil
}

// loadToken reads the persisted credential. Any failure (missing file,
// unreadable blob) means absent: the caller re-authenticates.
func (a *Authenticator) loadToken() *oauth2.Token {
	f, err := os.Open(a.TokenPath)
	if err != nil {
		return nil
	}
	defer f.Close()

	var tok oauth2.Token
	if err := gob.NewDecoder(f).Decode(&tok); err != nil {
		log.Printf("[auth] Persisted credential unreadable, treating as absent: %v", err)
		return nil
	}
	return &tok
}

func (a *Authenticator) saveToken(tok *oauth2.Token) error {
	if dir := filepath.Dir(a.TokenPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(a.TokenPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	return nil
}

func silentRefresh(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token) (*oauth2.Token, error) {
	return cfg.TokenSource(ctx, tok).Token()
}

// runLocalFlow drives the interactive authorization: a loopback listener
// receives the redirect, the user approves in a browser, and the code is
// exchanged for a token. Blocks until the flow completes or ctx is done.
func runLocalFlow(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	defer ln.Close()

	flowCfg := *cfg
	flowCfg.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())

	state := uuid.NewString()
	authURL := flowCfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	log.Printf("[auth] Open this URL in your browser to authorize:\n%s", authURL)

	type outcome struct {
		code string
		err  error
	}
	resCh := make(chan outcome, 1)

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			resCh <- outcome{err: fmt.Errorf("authorization state mismatch")}
		case q.Get("error") != "":
			http.Error(w, q.Get("error"), http.StatusBadRequest)
			resCh <- outcome{err: fmt.Errorf("authorization denied: %s", q.Get("error"))}
		default:
			fmt.Fprintln(w, "Authorization complete. You can close this tab.")
			resCh <- outcome{code: q.Get("code")}
		}
	})}
	go srv.Serve(ln)
	defer srv.Close()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resCh:
		if res.err != nil {
			return nil, res.err
		}
		return flowCfg.Exchange(ctx, res.code)
	}
}
