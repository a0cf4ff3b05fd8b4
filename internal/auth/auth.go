package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	// DefaultCredentialsFile is the OAuth client secret the user downloads
	// from the Google Cloud console.
	DefaultCredentialsFile = "credentials.json"
	// DefaultTokenFile caches the user token between runs.
	DefaultTokenFile = "token.json"
)

// NewSheetsService returns an authenticated Sheets service. It prefers the
// cached token, refreshes it when expired, and only falls back to the
// interactive consent flow when no usable credential exists. The refreshed
// or newly granted token is persisted back to tokenFile.
func NewSheetsService(ctx context.Context, credentialsFile, tokenFile string) (*sheets.Service, error) {
	tok := tokenFromFile(tokenFile)
	cfg := configFromFile(credentialsFile)

	if tok != nil && tok.Valid() {
		log.Debug().Str("token_file", tokenFile).Msg("Using cached credential")
		if cfg != nil {
			return buildService(ctx, cfg.TokenSource(ctx, tok))
		}
		// No client secret on disk, but the cached token is still good.
		return buildService(ctx, oauth2.StaticTokenSource(tok))
	}

	if cfg == nil {
		printSetupInstructions(credentialsFile)
		return nil, fmt.Errorf("no usable credential and no client secret file %q", credentialsFile)
	}

	if tok != nil && tok.RefreshToken != "" {
		log.Info().Msg("Refreshing expired token")
		fresh, err := cfg.TokenSource(ctx, tok).Token()
		if err == nil {
			saveToken(tokenFile, fresh)
			log.Info().Msg("Token refreshed")
			return buildService(ctx, cfg.TokenSource(ctx, fresh))
		}
		log.Warn().Err(err).Msg("Token refresh failed, starting fresh authentication")
	}

	tok, err := tokenFromWeb(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("interactive authorization failed: %w", err)
	}
	saveToken(tokenFile, tok)

	return buildService(ctx, cfg.TokenSource(ctx, tok))
}

func buildService(ctx context.Context, ts oauth2.TokenSource) (*sheets.Service, error) {
	service, err := sheets.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return service, nil
}

func configFromFile(credentialsFile string) *oauth2.Config {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil
	}
	cfg, err := google.ConfigFromJSON(b, sheets.SpreadsheetsScope)
	if err != nil {
		log.Warn().Err(err).Str("file", credentialsFile).Msg("Could not parse client secret file")
		return nil
	}
	return cfg
}

func tokenFromFile(tokenFile string) *oauth2.Token {
	b, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		log.Warn().Err(err).Str("file", tokenFile).Msg("Ignoring unreadable token cache")
		return nil
	}
	return &tok
}

func saveToken(tokenFile string, tok *oauth2.Token) {
	b, err := json.Marshal(tok)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode token for caching")
		return
	}
	if err := os.WriteFile(tokenFile, b, 0o600); err != nil {
		log.Warn().Err(err).Str("file", tokenFile).Msg("Failed to save token cache")
		return
	}
	log.Debug().Str("file", tokenFile).Msg("Credential saved for future runs")
}

// tokenFromWeb runs the installed-app consent flow: it listens on an
// ephemeral loopback port, prints the consent URL for the user to open, and
// exchanges the returned authorization code for a token.
func tokenFromWeb(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to open loopback listener: %w", err)
	}
	defer ln.Close()

	redirect := *cfg
	redirect.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	srv := &http.Server{Handler: authCodeHandler(state, codeCh, errCh)}
	go srv.Serve(ln)
	defer srv.Shutdown(context.Background())

	authURL := redirect.AuthCodeURL(state, oauth2.AccessTypeOffline)
	log.Info().Msg("Authorization required. Open this URL in your browser:")
	fmt.Println(authURL)

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		return nil, fmt.Errorf("timed out waiting for authorization")
	}

	tok, err := redirect.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	log.Info().Msg("Authentication successful")
	return tok, nil
}

// authCodeHandler receives the OAuth redirect. Only the first result is
// reported; the sends are non-blocking so a reloaded or duplicate redirect
// page gets a response instead of hanging the server shutdown.
func authCodeHandler(state string, codeCh chan<- string, errCh chan<- error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			select {
			case errCh <- fmt.Errorf("authorization response state mismatch"):
			default:
			}
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			select {
			case errCh <- fmt.Errorf("authorization response missing code"):
			default:
			}
			return
		}
		fmt.Fprintln(w, "Authentication complete. You can close this tab.")
		select {
		case codeCh <- code:
		default:
		}
	}
}

func randomState() (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate state nonce: %w", err)
	}
	return hex.EncodeToString(nonce), nil
}

func printSetupInstructions(credentialsFile string) {
	log.Error().Msg("Google Sheets authentication required")
	for _, line := range []string{
		"1. Go to https://console.cloud.google.com/",
		"2. Create a new project or select an existing one",
		"3. Enable the Google Sheets API",
		"4. Create credentials (OAuth 2.0 Client ID)",
		"5. Download the credentials JSON file",
		fmt.Sprintf("6. Save it as %q next to this binary and run again", credentialsFile),
	} {
		fmt.Println(line)
	}
}
