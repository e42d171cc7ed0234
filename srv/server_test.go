package srv

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docgrid/docgrid/document"
	"github.com/docgrid/docgrid/editor"
	"github.com/docgrid/docgrid/hub"
	"github.com/docgrid/docgrid/store/mem"
)

func newTestServer(t *testing.T) (*Server, *mem.Store, *hub.Hub) {
	t.Helper()
	st := mem.NewStore()
	h := hub.NewHub(nil)
	ed := editor.NewService(st, nil)
	return NewServer(st, ed, h, "shop", nil), st, h
}

func doJSON(t *testing.T, s *Server, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.Nil(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	var resp apiResponse
	require.Nil(t, json.NewDecoder(w.Body).Decode(&resp))
	return w, resp
}

func TestHealth(t *testing.T) {
	s, _, _ := newTestServer(t)
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.Nil(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestTestConnection(t *testing.T) {
	s, _, _ := newTestServer(t)
	w, resp := doJSON(t, s, "POST", "/api/collections/test-connection", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}

func TestAddFieldEndpoint(t *testing.T) {
	s, st, _ := newTestServer(t)
	st.Seed("employees", []document.Document{
		{"name": "alice"},
		{"name": "bob"},
	})

	w, resp := doJSON(t, s, "POST", "/api/collections/employees/fields", map[string]any{
		"fieldName":    "bonus",
		"fieldType":    "number",
		"defaultValue": "0",
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(2), data["modifiedCount"])

	for _, doc := range st.Documents("employees") {
		assert.Equal(t, float64(0), doc["bonus"])
	}
}

func TestAddFieldEndpointValidation(t *testing.T) {
	s, _, _ := newTestServer(t)

	w, resp := doJSON(t, s, "POST", "/api/collections/employees/fields", map[string]any{
		"fieldType": "number",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestAddFieldEndpointConflict(t *testing.T) {
	s, st, _ := newTestServer(t)
	st.Seed("employees", []document.Document{{"name": "alice"}})

	w, resp := doJSON(t, s, "POST", "/api/collections/employees/fields", map[string]any{
		"fieldName": "name",
		"fieldType": "string",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, resp.Success)
}

func TestRenameAndRemoveFieldEndpoints(t *testing.T) {
	s, st, _ := newTestServer(t)
	st.Seed("employees", []document.Document{
		{"name": "alice", "salary": float64(1)},
	})

	w, resp := doJSON(t, s, "PUT", "/api/collections/employees/fields/salary", map[string]any{
		"newFieldName": "pay",
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	w, resp = doJSON(t, s, "DELETE", "/api/collections/employees/fields/pay", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	docs := st.Documents("employees")
	require.Len(t, docs, 1)
	assert.False(t, docs[0].Has("salary"))
	assert.False(t, docs[0].Has("pay"))
}

func TestGetSchemaEndpoint(t *testing.T) {
	s, st, _ := newTestServer(t)
	st.Seed("employees", []document.Document{
		{"name": "alice", "salary": float64(1)},
	})

	w, resp := doJSON(t, s, "GET", "/api/collections/employees/schema", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "inferred", data["provenance"])
	fields := data["fields"].([]any)
	assert.NotEmpty(t, fields)
}

func TestGetSchemaOpenAPIFormat(t *testing.T) {
	s, st, _ := newTestServer(t)
	st.Seed("employees", []document.Document{
		{"name": "alice"},
	})

	w, resp := doJSON(t, s, "GET", "/api/collections/employees/schema?format=openapi", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "object", data["type"])
	props := data["properties"].(map[string]any)
	assert.Contains(t, props, "name")
}

func TestDocumentCRUDAndBroadcast(t *testing.T) {
	s, _, h := newTestServer(t)

	// Two editors watching the orders collection.
	a := h.Register("editor-a", "shop")
	b := h.Register("editor-b", "shop")
	h.Join(a, hub.RoomKey("shop", "orders"), "orders")
	h.Join(b, hub.RoomKey("shop", "orders"), "orders")
	drainConn(a)
	drainConn(b)

	// Create.
	_, resp := doJSON(t, s, "POST", "/api/collections/orders", map[string]any{
		"status": "new",
	}, nil)
	require.True(t, resp.Success)
	created := resp.Data.(map[string]any)
	id := created["_id"].(string)
	require.NotEmpty(t, id)

	// Update as editor-a; only editor-b hears about it.
	w, resp := doJSON(t, s, "PUT", "/api/collections/orders/"+id, map[string]any{
		"status": "shipped",
	}, map[string]string{"X-Editor-Id": "editor-a"})
	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)
	updated := resp.Data.(map[string]any)
	assert.Equal(t, "shipped", updated["status"])

	msg, ok := recvConn(b)
	require.True(t, ok)
	assert.Equal(t, hub.MsgDocumentUpdated, msg.Type)
	assert.Equal(t, id, msg.DocumentID)
	assert.Equal(t, "editor-a", msg.EditorID)
	_, ok = recvConn(a)
	assert.False(t, ok)

	// Delete.
	w, resp = doJSON(t, s, "DELETE", "/api/collections/orders/"+id, nil,
		map[string]string{"X-Editor-Id": "editor-a"})
	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	msg, ok = recvConn(b)
	require.True(t, ok)
	assert.Equal(t, hub.MsgDocumentDeleted, msg.Type)
	assert.Equal(t, id, msg.DocumentID)

	// Gone now.
	w, resp = doJSON(t, s, "DELETE", "/api/collections/orders/"+id, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
}

func TestGetDocumentsPaging(t *testing.T) {
	s, st, _ := newTestServer(t)
	var docs []document.Document
	for i := 0; i < 30; i++ {
		docs = append(docs, document.Document{"n": float64(i)})
	}
	st.Seed("orders", docs)

	w, resp := doJSON(t, s, "GET", "/api/collections/orders?page=2&limit=25", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	page := resp.Data.(map[string]any)
	assert.Equal(t, float64(30), page["total"])
	assert.Equal(t, float64(2), page["page"])
	assert.Equal(t, false, page["hasNext"])
	assert.Equal(t, true, page["hasPrev"])
	assert.Len(t, page["data"].([]any), 5)
}

func TestCreateDocumentRejectsNonObject(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/collections/orders", bytes.NewBufferString(`[1,2,3]`))
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _, _ := newTestServer(t)
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "docgrid_editor_connections")
}

func recvConn(c *hub.Conn) (hub.Message, bool) {
	select {
	case m, ok := <-c.Outbound():
		return m, ok
	default:
		return hub.Message{}, false
	}
}

func drainConn(c *hub.Conn) {
	for {
		if _, ok := recvConn(c); !ok {
			return
		}
	}
}
