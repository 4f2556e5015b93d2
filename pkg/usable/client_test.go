package usable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithToken(srv.URL, "test-token"), srv
}

func TestListFragments_Query(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/memory-fragments", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "ws-1", q.Get("workspaceId"))
		assert.Equal(t, "100", q.Get("limit"))
		assert.Equal(t, "0", q.Get("offset"))
		assert.Equal(t, "type-1", q.Get("fragmentTypeId"))
		assert.Equal(t, []string{"app:taskable", "collection:work"}, q["tags"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"fragments":[{"id":"f1","title":"a","content":"[]","tags":["app:taskable"],"status":"active","createdAt":"2026-01-02T03:04:05Z"}]}`)
	})

	fragments, err := client.ListFragments(context.Background(), ListParams{
		WorkspaceID:    "ws-1",
		FragmentTypeID: "type-1",
		Tags:           []string{"app:taskable", "collection:work"},
	})
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, "f1", fragments[0].ID)
	assert.Equal(t, 2026, fragments[0].CreatedAt.Year())
}

func TestListFragments_RequiresWorkspace(t *testing.T) {
	client := NewClientWithToken("http://127.0.0.1:0", "t")
	_, err := client.ListFragments(context.Background(), ListParams{})
	assert.Error(t, err)
}

func TestListFragments_StrictDecode(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"wrong shape", `{"fragments":{"id":"x"}}`},
		{"missing id", `{"fragments":[{"title":"no id"}]}`},
		{"bad status", `{"fragments":[{"id":"x","status":"deleted"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := client.ListFragments(context.Background(), ListParams{WorkspaceID: "ws"})
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestListFragments_ToleratesUnknownFields(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"fragments":[{"id":"x","title":"t","tags":["app:taskable"],"repository":"r","score":0.9}],"total":1}`)
	})

	fragments, err := client.ListFragments(context.Background(), ListParams{WorkspaceID: "ws"})
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, "x", fragments[0].ID)
	assert.Equal(t, []string{"app:taskable"}, fragments[0].Tags)
}

func TestCreateFragment_Defaults(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Title", body["summary"])
		assert.Equal(t, "api", body["createdVia"])
		assert.Equal(t, []any{}, body["tags"])

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"new","title":"Title"}`)
	})

	f, err := client.CreateFragment(context.Background(), CreateFragmentInput{WorkspaceID: "ws", FragmentTypeID: "t", Title: "Title", Content: "[]"})
	require.NoError(t, err)
	assert.Equal(t, "new", f.ID)
}

func TestUpdateFragment_Partial(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/memory-fragments/f%201", r.URL.EscapedPath())

		data, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"content":"[]"}`, string(data))
		_, _ = io.WriteString(w, `{"id":"f 1","content":"[]"}`)
	})

	content := "[]"
	f, err := client.UpdateFragment(context.Background(), "f 1", FragmentPatch{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "f 1", f.ID)
}

func TestDeleteFragment_NoContent(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	assert.NoError(t, client.DeleteFragment(context.Background(), "f1"))
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantDetails string
		is          error
	}{
		{"json error", http.StatusNotFound, `{"error":"Fragment not found"}`, "Fragment not found", "", ErrNotFound},
		{"json message with details", http.StatusBadRequest, `{"message":"Invalid","details":"fragmentTypeId unknown"}`, "Invalid", "fragmentTypeId unknown", nil},
		{"plain text", http.StatusUnauthorized, "token expired", "HTTP 401", "token expired", ErrUnauthorized},
		{"empty body", http.StatusInternalServerError, "", "HTTP 500", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			err := client.DeleteFragment(context.Background(), "x")
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantDetails, apiErr.Details)
			assert.Equal(t, tt.status, StatusCode(err))
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestListFragmentTypes(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/workspaces/ws-1/mcp-system-prompt", r.URL.Path)
		_, _ = io.WriteString(w, `{"prompt":"...","fragmentTypes":[{"id":"t1","name":"Template"},{"id":"t2","name":"Instruction Set"}]}`)
	})

	types, err := client.ListFragmentTypes(context.Background(), "ws-1")
	require.NoError(t, err)
	assert.Equal(t, []FragmentType{{ID: "t1", Name: "Template"}, {ID: "t2", Name: "Instruction Set"}}, types)
}

func TestListWorkspaces(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"envelope", `{"workspaces":[{"id":"w1","name":"Personal"}]}`},
		{"bare array", `[{"id":"w1","name":"Personal"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/workspaces", r.URL.Path)
				_, _ = io.WriteString(w, tt.body)
			})
			workspaces, err := client.ListWorkspaces(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []Workspace{{ID: "w1", Name: "Personal"}}, workspaces)
		})
	}
}

func TestUploadFlow(t *testing.T) {
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"), "token must not reach the storage host")
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		data, _ := io.ReadAll(r.Body)
		assert.Equal(t, "png-bytes", string(data))
		w.WriteHeader(http.StatusOK)
	}))
	defer storage.Close()

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/files/upload/request":
			var req UploadRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, int64(9), req.SizeBytes)
			assert.Equal(t, []string{"app:taskable", "type:item-attachment"}, req.Tags)
			_, _ = io.WriteString(w, `{"fileId":"file-1","uploadUrl":"`+storage.URL+`/bucket/file-1","expiresAt":"soon"}`)
		case "/api/files/file-1/attachments":
			data, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"fragmentId":"frag-1","displayOrder":0}`, string(data))
			w.WriteHeader(http.StatusCreated)
		case "/api/files/file-1/download":
			_, _ = io.WriteString(w, `{"fileId":"file-1","downloadUrl":"https://cdn.test/file-1"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := context.Background()
	ticket, err := client.RequestUpload(ctx, UploadRequest{
		WorkspaceID: "ws", FileName: "a.png", MimeType: "image/png", SizeBytes: 9,
		Tags: []string{"app:taskable", "type:item-attachment"},
	})
	require.NoError(t, err)
	require.NoError(t, client.Upload(ctx, ticket.UploadURL, "image/png", bytes.NewReader([]byte("png-bytes")), 9))
	require.NoError(t, client.AttachToFragment(ctx, ticket.FileID, "frag-1", ""))

	meta, err := client.DownloadInfo(ctx, ticket.FileID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/file-1", meta.DownloadURL)
}

func TestRequestUpload_InvalidTicket(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"fileId":"f"}`)
	})
	_, err := client.RequestUpload(context.Background(), UploadRequest{WorkspaceID: "ws", FileName: "a", MimeType: "image/png", SizeBytes: 1})
	assert.ErrorIs(t, err, ErrDecode)
}

func TestUpload_StorageError(t *testing.T) {
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer storage.Close()

	client := NewClientWithToken("http://unused", "t")
	err := client.Upload(context.Background(), storage.URL, "image/png", bytes.NewReader([]byte("x")), 1)
	assert.Equal(t, http.StatusForbidden, StatusCode(err))
}
