package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freeLoopbackAddr reserves and releases a loopback port for the test server.
func freeLoopbackAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

func TestWaitForCodeDeliversCode(t *testing.T) {
	addr := freeLoopbackAddr(t)

	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		code, err := WaitForCode(context.Background(), addr, "state-123")
		done <- result{code, err}
	}()

	// Give the listener a moment to come up
	var resp *http.Response
	var err error
	callbackURL := fmt.Sprintf("http://%s/callback?code=auth-code&state=%s", addr, url.QueryEscape("state-123"))
	require.Eventually(t, func() bool {
		resp, err = http.Get(callbackURL)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, "auth-code", r.code)
}

func TestWaitForCodeRejectsStateMismatch(t *testing.T) {
	addr := freeLoopbackAddr(t)

	done := make(chan error, 1)
	go func() {
		_, err := WaitForCode(context.Background(), addr, "expected-state")
		done <- err
	}()

	callbackURL := fmt.Sprintf("http://%s/callback?code=auth-code&state=wrong", addr)
	require.Eventually(t, func() bool {
		resp, err := http.Get(callbackURL)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)

	err := <-done
	assert.ErrorContains(t, err, "state mismatch")
}

func TestWaitForCodeReportsDenial(t *testing.T) {
	addr := freeLoopbackAddr(t)

	done := make(chan error, 1)
	go func() {
		_, err := WaitForCode(context.Background(), addr, "s")
		done <- err
	}()

	callbackURL := fmt.Sprintf("http://%s/callback?error=access_denied&state=s", addr)
	require.Eventually(t, func() bool {
		resp, err := http.Get(callbackURL)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)

	err := <-done
	assert.ErrorContains(t, err, "access_denied")
}

func TestWaitForCodeHonorsContext(t *testing.T) {
	addr := freeLoopbackAddr(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := WaitForCode(ctx, addr, "s")
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForCode did not return after cancel")
	}
}
