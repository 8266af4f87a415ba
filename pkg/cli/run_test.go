package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantMethod string
		wantURI    string
		wantErr    bool
	}{
		{name: "uri only", args: []string{"/config/listeners"}, wantURI: "/config/listeners"},
		{name: "method then uri", args: []string{"PUT", "/config"}, wantMethod: "PUT", wantURI: "/config"},
		{name: "uri then method", args: []string{"/config", "delete"}, wantMethod: "delete", wantURI: "/config"},
		{name: "no uri", args: []string{"GET"}, wantErr: true},
		{name: "empty", args: []string{}, wantErr: true},
		{name: "two uris", args: []string{"/a", "/b"}, wantErr: true},
		{name: "two methods", args: []string{"GET", "PUT"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method, uri, err := parseTarget(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseTarget(%v) expected error", tt.args)
				}
				if _, ok := err.(*usageError); !ok {
					t.Errorf("error type = %T, want *usageError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTarget(%v): %v", tt.args, err)
			}
			if method != tt.wantMethod {
				t.Errorf("method = %q, want %q", method, tt.wantMethod)
			}
			if uri != tt.wantURI {
				t.Errorf("uri = %q, want %q", uri, tt.wantURI)
			}
		})
	}
}

func TestReadPayload_PipedData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stdin")
	if err := os.WriteFile(path, []byte(`{"a":1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	payload, err := readPayload(f)
	if err != nil {
		t.Fatalf("readPayload: %v", err)
	}
	if string(payload) != `{"a":1}` {
		t.Errorf("payload = %q", payload)
	}
}

func TestReadPayload_EmptyInputMeansNoPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stdin")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	payload, err := readPayload(f)
	if err != nil {
		t.Fatalf("readPayload: %v", err)
	}
	if payload != nil {
		t.Errorf("empty input must yield nil payload, got %q", payload)
	}
}
