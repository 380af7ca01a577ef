package auth

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// WaitForCode runs a one-shot loopback HTTP server on addr and returns the
// first authorization code Spotify delivers to /callback. The loopback
// redirect must be registered on the Spotify application.
func WaitForCode(ctx context.Context, addr, state string) (string, error) {
	type result struct {
		code string
		err  error
	}
	resultCh := make(chan result, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if st := r.FormValue("state"); st != state {
			http.NotFound(w, r)
			resultCh <- result{err: errors.Errorf("state mismatch: got %q", st)}
			return
		}
		if errParam := r.FormValue("error"); errParam != "" {
			http.Error(w, "Authorization failed: "+errParam, http.StatusForbidden)
			resultCh <- result{err: errors.Errorf("authorization denied: %s", errParam)}
			return
		}
		code := r.FormValue("code")
		if code == "" {
			http.Error(w, "Missing authorization code", http.StatusBadRequest)
			resultCh <- result{err: errors.New("callback carried no code")}
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Successfully connected to Spotify! You can close this window."))
		resultCh <- result{code: code}
	})

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", errors.Wrapf(err, "listening on %s", addr)
	}

	srv := &http.Server{Handler: mux}
	go srv.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-resultCh:
		return r.code, r.err
	}
}
