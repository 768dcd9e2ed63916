package isp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/logging"
	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

func TestClassify_ByIPPrefix(t *testing.T) {
	info := Classify("200.142.10.20", "")
	if info.Provider != ProviderVivo {
		t.Errorf("expected %s, got %s", ProviderVivo, info.Provider)
	}
	if !info.Reliable() {
		t.Errorf("prefix match should be reliable, confidence %v", info.ConfidenceLevel)
	}
}

func TestClassify_ByHostname(t *testing.T) {
	info := Classify("203.0.113.9", "bd20.virtua.com.br")
	if info.Provider != ProviderNet {
		t.Errorf("expected %s, got %s", ProviderNet, info.Provider)
	}
	// Hostname-only match scores half of a prefix match.
	if info.ConfidenceLevel >= 1 {
		t.Errorf("hostname match should not reach full confidence, got %v", info.ConfidenceLevel)
	}
}

func TestClassify_Unknown(t *testing.T) {
	info := Classify("203.0.113.9", "host.example.net")
	if info.Provider != ProviderUnknown {
		t.Errorf("expected unknown provider, got %s", info.Provider)
	}
	if info.ConfidenceLevel != 0 {
		t.Errorf("expected zero confidence, got %v", info.ConfidenceLevel)
	}
}

func TestClassifyIPType(t *testing.T) {
	tests := []struct {
		ip   string
		want types.IPType
	}{
		{"10.1.2.3", types.IPTypePrivate},
		{"172.16.0.1", types.IPTypePrivate},
		{"172.31.255.1", types.IPTypePrivate},
		{"192.168.1.1", types.IPTypePrivate},
		{"127.0.0.1", types.IPTypePrivate},
		{"8.8.8.8", types.IPTypePublic},
		{"172.32.0.1", types.IPTypePublic},
		{"not-an-ip", types.IPTypeUnknown},
	}
	for _, tt := range tests {
		if got := ClassifyIPType(tt.ip); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.ip, tt.want, got)
		}
	}
}

func TestPublicIP_FallsBackAcrossServices(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("198.51.100.7\n"))
	}))
	defer working.Close()

	d := &Detector{
		client: &http.Client{Timeout: time.Second},
		services: []ipService{
			{url: broken.URL},
			{url: working.URL},
		},
		log: logging.NewLogger("isp-test"),
	}

	ip, err := d.PublicIP(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ip != "198.51.100.7" {
		t.Errorf("expected 198.51.100.7, got %s", ip)
	}
}

func TestPublicIP_JSONService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"origin": "198.51.100.7, 10.0.0.1"})
	}))
	defer srv.Close()

	d := &Detector{
		client:   &http.Client{Timeout: time.Second},
		services: []ipService{{url: srv.URL, jsonField: "origin"}},
		log:      logging.NewLogger("isp-test"),
	}

	ip, err := d.PublicIP(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ip != "198.51.100.7" {
		t.Errorf("expected first proxied address, got %s", ip)
	}
}

func TestPublicIP_AllServicesDown(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not an ip</html>"))
	}))
	defer broken.Close()

	d := &Detector{
		client:   &http.Client{Timeout: time.Second},
		services: []ipService{{url: broken.URL}},
		log:      logging.NewLogger("isp-test"),
	}

	if _, err := d.PublicIP(context.Background()); err == nil {
		t.Fatal("expected error when no service returns a valid address")
	}
}
