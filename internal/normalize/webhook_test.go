package normalize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/stockbook/internal/core"
)

func TestWebhook_Normalize(t *testing.T) {
	var gotCycle string
	var gotBody payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		gotCycle = r.Header.Get(CycleIDHeader)
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"Cód. Produto / EAN*": "A1", "Qtd. Estoque Atual": 5}]`))
	}))
	defer srv.Close()

	wh, err := NewWebhook(srv.URL, nil, time.Second)
	if err != nil {
		t.Fatalf("NewWebhook() error = %v", err)
	}

	ctx := core.ContextWithCycleID(context.Background(), "cycle-1")
	out, err := wh.Normalize(ctx, []map[string]any{{"COD. PROD.": "A1", "QTD.": "5"}})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if gotCycle != "cycle-1" {
		t.Errorf("cycle header = %q, want %q", gotCycle, "cycle-1")
	}
	if len(gotBody.Todos) != 1 || gotBody.Todos[0]["COD. PROD."] != "A1" {
		t.Errorf("sent = %v, want one record with COD. PROD.=A1", gotBody.Todos)
	}
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if got := core.CellFromAny(out[0]["Qtd. Estoque Atual"]); !got.Equal(core.IntCell(5)) {
		t.Errorf("quantity = %v, want integer 5", got)
	}
}

func TestDecodeRecords(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"array", `[{"a":1},{"a":2}]`, 2, false},
		{"wrapped", `{"todos":[{"a":1}]}`, 1, false},
		{"empty body", ``, 0, false},
		{"empty array", `[]`, 0, false},
		{"not json", `<html>`, 0, true},
		{"scalar", `42`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeRecords([]byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeRecords() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestWebhook_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "workflow failed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	wh, _ := NewWebhook(srv.URL, srv.Client(), 0)
	_, err := wh.Normalize(context.Background(), []map[string]any{{"a": 1}})
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"webhook", "500", "workflow failed"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestWebhook_ContextTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	wh, _ := NewWebhook(srv.URL, nil, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := wh.Normalize(ctx, []map[string]any{{"a": 1}})
	if err == nil || !strings.Contains(err.Error(), "deadline exceeded") {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestNewWebhook_RequiresURL(t *testing.T) {
	if _, err := NewWebhook(" ", nil, 0); err == nil {
		t.Error("expected error for blank url")
	}
}
