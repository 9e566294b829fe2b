package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHashPassword(t *testing.T) {
	out, err := run(t, "s3cret\n", "hash-password", "--cost", "4")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	_, err = run(t, "\n", "hash-password")
	assert.Error(t, err)
}

func TestStatusAgainstServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"state":{"mode":"infinite","orderIndex":1,"phase":"break","remainingSeconds":299,"isRunning":true,"totals":{"workSec":1500,"restSec":1}}}`)
	}))
	defer server.Close()

	out, err := run(t, "", "--server", server.URL, "--token", "abc", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "break")
	assert.Contains(t, out, "04:59")
	assert.Contains(t, out, "running")
	assert.Contains(t, out, "phase 2 of 8")
	assert.Contains(t, out, "25m 0s work")
}

func TestServerFromEnvironment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks", r.URL.Path)
		_, _ = io.WriteString(w, `{"tasks":[{"id":"t1","name":"Write","status":"doing","tasks":[{"id":"t2","name":"Outline","status":"done"}]}]}`)
	}))
	defer server.Close()
	t.Setenv("TIMER_SERVER", server.URL)

	out, err := run(t, "", "tasks", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "[~] Write  t1")
	assert.Contains(t, out, "    [x] Outline  t2")
}

func TestAPIErrorIsReturned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":"invalid_mode","message":"mode must be infinite or individually"}}`)
	}))
	defer server.Close()

	_, err := run(t, "", "--server", server.URL, "mode", "forever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_mode")
}
