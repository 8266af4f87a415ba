package dispatch

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesselhq/vesselctl/pkg/resolve"
)

// configServer fakes the daemon's control API: a JSON value per URI, with
// call counting per method.
type configServer struct {
	mu     sync.Mutex
	values map[string]string
	calls  map[string]int
}

func newConfigServer(values map[string]string) *configServer {
	return &configServer{values: values, calls: make(map[string]int)}
}

func (s *configServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[r.Method]++

	switch r.Method {
	case http.MethodGet:
		v, ok := s.values[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":"value doesn't exist"}`)
			return
		}
		io.WriteString(w, v)
	case http.MethodPut, http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		s.values[r.URL.Path] = string(body)
		io.WriteString(w, `{"success":"reconfiguration done"}`)
	case http.MethodDelete:
		delete(s.values, r.URL.Path)
		io.WriteString(w, `{"success":"reconfiguration done"}`)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *configServer) callCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *configServer) value(uri string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[uri]
}

func tcpDispatcher(t *testing.T, s *configServer) (*Dispatcher, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	ep := resolve.Endpoint{Kind: resolve.EndpointTCP, Address: ts.Listener.Addr().String()}
	return NewDispatcher(NewClient(ep), nil), ts
}

func TestDispatch_InsertPrependsElement(t *testing.T) {
	srv := newConfigServer(map[string]string{"/config/routes": "[1,2,3]"})
	d, _ := tcpDispatcher(t, srv)

	res, err := d.Dispatch(context.Background(), Request{
		Method:  MethodInsert,
		URI:     "/config/routes",
		Payload: []byte("0"),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.True(t, res.Mutating)

	// Exactly one GET and one PUT.
	assert.Equal(t, 1, srv.callCount(http.MethodGet))
	assert.Equal(t, 1, srv.callCount(http.MethodPut))

	var stored []int
	require.NoError(t, json.Unmarshal([]byte(srv.value("/config/routes")), &stored))
	assert.Equal(t, []int{0, 1, 2, 3}, stored, "new element goes in front")
}

func TestDispatch_InsertArrayPayloadPrependsAll(t *testing.T) {
	srv := newConfigServer(map[string]string{"/config/routes": "[3,4]"})
	d, _ := tcpDispatcher(t, srv)

	_, err := d.Dispatch(context.Background(), Request{
		Method:  MethodInsert,
		URI:     "/config/routes",
		Payload: []byte("[1,2]"),
	})
	require.NoError(t, err)

	var stored []int
	require.NoError(t, json.Unmarshal([]byte(srv.value("/config/routes")), &stored))
	assert.Equal(t, []int{1, 2, 3, 4}, stored)
}

func TestDispatch_InsertTargetNotArray(t *testing.T) {
	srv := newConfigServer(map[string]string{"/config": `{"listeners":{}}`})
	d, _ := tcpDispatcher(t, srv)

	_, err := d.Dispatch(context.Background(), Request{
		Method:  MethodInsert,
		URI:     "/config",
		Payload: []byte("0"),
	})
	var notArray *NotArrayError
	require.ErrorAs(t, err, &notArray)
	assert.Equal(t, "/config", notArray.URI)

	// No partial mutation: the PUT must never have been issued.
	assert.Equal(t, 0, srv.callCount(http.MethodPut))
	assert.Equal(t, `{"listeners":{}}`, srv.value("/config"))
}

func TestDispatch_InsertFetchFailureIssuesNoPut(t *testing.T) {
	srv := newConfigServer(map[string]string{})
	d, _ := tcpDispatcher(t, srv)

	_, err := d.Dispatch(context.Background(), Request{
		Method:  MethodInsert,
		URI:     "/config/missing",
		Payload: []byte("0"),
	})
	var notArray *NotArrayError
	require.ErrorAs(t, err, &notArray)
	assert.Equal(t, 0, srv.callCount(http.MethodPut))
}

func TestDispatch_InsertWithoutPayload(t *testing.T) {
	srv := newConfigServer(map[string]string{"/config/routes": "[]"})
	d, _ := tcpDispatcher(t, srv)

	_, err := d.Dispatch(context.Background(), Request{Method: MethodInsert, URI: "/config/routes"})
	require.Error(t, err)
	assert.Equal(t, 0, srv.callCount(http.MethodGet))
	assert.Equal(t, 0, srv.callCount(http.MethodPut))
}

func TestDispatch_InsertInvalidPayload(t *testing.T) {
	srv := newConfigServer(map[string]string{"/config/routes": "[]"})
	d, _ := tcpDispatcher(t, srv)

	_, err := d.Dispatch(context.Background(), Request{
		Method:  MethodInsert,
		URI:     "/config/routes",
		Payload: []byte("{broken"),
	})
	var payloadErr *PayloadError
	require.ErrorAs(t, err, &payloadErr)
	assert.Equal(t, 0, srv.callCount(http.MethodPut))
}

func TestDispatch_DeleteDropsPayload(t *testing.T) {
	var gotBody []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, `{"success":"reconfiguration done"}`)
	}))
	defer ts.Close()

	ep := resolve.Endpoint{Kind: resolve.EndpointTCP, Address: ts.Listener.Addr().String()}
	d := NewDispatcher(NewClient(ep), nil)

	res, err := d.Dispatch(context.Background(), Request{
		Method:  MethodDelete,
		URI:     "/config/listeners/*:8080",
		Payload: []byte(`{"ignored":true}`),
	})
	require.NoError(t, err)
	assert.True(t, res.Mutating)
	assert.Empty(t, gotBody, "DELETE must never attach a payload")
}

func TestDispatch_GetPassthrough(t *testing.T) {
	srv := newConfigServer(map[string]string{"/config/listeners": `{"*:8080":{}}`})
	d, _ := tcpDispatcher(t, srv)

	res, err := d.Dispatch(context.Background(), Request{Method: MethodGet, URI: "/config/listeners"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.False(t, res.Mutating, "plain GET outside /control is not mutating")
	assert.JSONEq(t, `{"*:8080":{}}`, string(res.Body))
}

func TestDispatch_GetUnderControlNamespaceIsMutating(t *testing.T) {
	srv := newConfigServer(map[string]string{"/control/applications/app/restart": `{"success":"ok"}`})
	d, _ := tcpDispatcher(t, srv)

	res, err := d.Dispatch(context.Background(), Request{
		Method: MethodGet,
		URI:    "/control/applications/app/restart",
	})
	require.NoError(t, err)
	assert.True(t, res.Mutating)
}

func TestDispatch_ErrorStatusIsNotTransportError(t *testing.T) {
	srv := newConfigServer(map[string]string{})
	d, _ := tcpDispatcher(t, srv)

	res, err := d.Dispatch(context.Background(), Request{Method: MethodGet, URI: "/config/nope"})
	require.NoError(t, err, "an error status from the API is still an answer")
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestClient_TransportError(t *testing.T) {
	ep := resolve.Endpoint{Kind: resolve.EndpointTCP, Address: "127.0.0.1:1"}
	d := NewDispatcher(NewClient(ep), nil)

	_, err := d.Dispatch(context.Background(), Request{Method: MethodGet, URI: "/config"})
	var transport *TransportError
	require.ErrorAs(t, err, &transport)
}

func TestClient_UnixSocketTransport(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "control.sock")
	ln, err := net.Listen("unix", sock)
	require.NoError(t, err)

	srv := &http.Server{Handler: newConfigServer(map[string]string{"/config": `{"ok":true}`})}
	go srv.Serve(ln)
	t.Cleanup(func() { srv.Close() })

	ep := resolve.Endpoint{Kind: resolve.EndpointSocket, Address: sock}
	client := NewClient(ep)

	resp, err := client.Do(context.Background(), http.MethodGet, "/config", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
}
