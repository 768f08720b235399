package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/codex-switcher-tui/internal/models"
)

type recordedCall struct {
	path      string
	body      map[string]any
	requestID string
	auth      string
}

func newTestBackend(t *testing.T, handler func(cmd string, body map[string]any) (int, any)) (*HTTPClient, *[]recordedCall) {
	t.Helper()

	var calls []recordedCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		body := map[string]any{}
		require.NoError(t, json.Unmarshal(raw, &body))

		calls = append(calls, recordedCall{
			path:      r.URL.Path,
			body:      body,
			requestID: r.Header.Get("X-Request-ID"),
			auth:      r.Header.Get("Authorization"),
		})

		status, out := handler(strings.TrimPrefix(r.URL.Path, "/invoke/"), body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if out != nil {
			_ = json.NewEncoder(w).Encode(out)
		}
	}))
	t.Cleanup(srv.Close)

	client := NewHTTPClient(HTTPConfig{BaseURL: srv.URL + "/", Token: "secret", Timeout: 5 * time.Second})
	return client, &calls
}

func TestHTTPClient_ListAccounts(t *testing.T) {
	client, calls := newTestBackend(t, func(cmd string, _ map[string]any) (int, any) {
		assert.Equal(t, "list_accounts", cmd)
		return http.StatusOK, []map[string]any{
			{"id": "a1", "name": "Work", "auth_mode": "chat_gpt", "is_active": true, "created_at": "2025-01-01T00:00:00Z"},
			{"id": "a2", "name": "Personal", "auth_mode": "api_key", "is_active": false, "created_at": "2025-01-02T00:00:00Z"},
		}
	})

	accounts, err := client.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "a1", accounts[0].ID)
	assert.Equal(t, models.AuthModeAPIKey, accounts[1].AuthMode)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/invoke/list_accounts", call.path)
	assert.NotEmpty(t, call.requestID)
	assert.Equal(t, "Bearer secret", call.auth)
}

func TestHTTPClient_ArgumentNames(t *testing.T) {
	client, calls := newTestBackend(t, func(cmd string, _ map[string]any) (int, any) {
		switch cmd {
		case "add_account_from_file", "complete_login", "complete_reconnect":
			return http.StatusOK, map[string]any{"id": "new", "name": "n", "auth_mode": "chat_gpt"}
		case "start_login", "start_reconnect":
			return http.StatusOK, map[string]any{"auth_url": "https://auth.example/x", "callback_port": 1455}
		default:
			return http.StatusOK, nil
		}
	})
	ctx := context.Background()

	require.NoError(t, client.SwitchAccount(ctx, "a1"))
	require.NoError(t, client.RenameAccount(ctx, "a1", "Renamed"))
	require.NoError(t, client.DeleteAccount(ctx, "a2"))
	_, err := client.AddAccountFromFile(ctx, "/tmp/auth.json", "Imported")
	require.NoError(t, err)
	info, err := client.StartLogin(ctx, "New")
	require.NoError(t, err)
	assert.Equal(t, 1455, info.CallbackPort)
	_, err = client.StartReconnect(ctx, "a1")
	require.NoError(t, err)
	require.NoError(t, client.ReorderAccounts(ctx, []string{"b", "a"}))

	want := []struct {
		path string
		body map[string]any
	}{
		{"/invoke/switch_account", map[string]any{"accountId": "a1"}},
		{"/invoke/rename_account", map[string]any{"accountId": "a1", "newName": "Renamed"}},
		{"/invoke/delete_account", map[string]any{"accountId": "a2"}},
		{"/invoke/add_account_from_file", map[string]any{"path": "/tmp/auth.json", "name": "Imported"}},
		{"/invoke/start_login", map[string]any{"accountName": "New"}},
		{"/invoke/start_reconnect", map[string]any{"accountId": "a1"}},
		{"/invoke/reorder_accounts", map[string]any{"accountIds": []any{"b", "a"}}},
	}

	require.Len(t, *calls, len(want))
	for i, w := range want {
		assert.Equal(t, w.path, (*calls)[i].path)
		assert.Equal(t, w.body, (*calls)[i].body)
	}
}

func TestHTTPClient_CommandError(t *testing.T) {
	client, _ := newTestBackend(t, func(string, map[string]any) (int, any) {
		return http.StatusBadRequest, map[string]string{"error": "Account not found"}
	})

	err := client.SwitchAccount(context.Background(), "missing")
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, CmdSwitchAccount, cmdErr.Command)
	assert.Equal(t, http.StatusBadRequest, cmdErr.Status)
	assert.Equal(t, "Account not found", Message(err))
}

func TestHTTPClient_CommandErrorPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	client := NewHTTPClient(HTTPConfig{BaseURL: srv.URL})
	_, err := client.CreateAuthSnapshot(context.Background())
	require.Error(t, err)
	assert.Equal(t, "boom", Message(err))
}

func TestHTTPClient_Snapshot(t *testing.T) {
	client, _ := newTestBackend(t, func(cmd string, _ map[string]any) (int, any) {
		assert.Equal(t, "create_auth_snapshot", cmd)
		return http.StatusOK, "/home/u/.codex/snapshots/auth-1.json"
	})

	path, err := client.CreateAuthSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/home/u/.codex/snapshots/auth-1.json", path)
}

func TestHTTPClient_ContextCancelled(t *testing.T) {
	client, _ := newTestBackend(t, func(string, map[string]any) (int, any) {
		return http.StatusOK, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CheckCodexProcesses(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "plain", Message(errors.New("plain")))
}
