// Package isp detects the internet provider behind the current connection.
// Detection is best effort: it queries public what-is-my-ip services with
// fallbacks, reverse-resolves the address, and matches known Brazilian
// provider address blocks and hostname markers. A run never fails because
// detection did.
package isp

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/logging"
	diagerr "github.com/felipecaninnovaes/diagnostico-de-rede/pkg/errors"
	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

const (
	ProviderVivo    = "Vivo/Telefonica"
	ProviderNet     = "NET/Claro"
	ProviderOi      = "Oi"
	ProviderTim     = "TIM"
	ProviderClaro   = "Claro"
	ProviderUnknown = "unknown"
)

// rule matches one provider by address prefix or hostname marker. Prefix
// matches score double the priority: an address block is a stronger signal
// than a marketing string in a PTR record.
type rule struct {
	provider        string
	ipPrefixes      []string
	hostnameMarkers []string
	priority        int
}

var detectionRules = []rule{
	{
		provider: ProviderVivo,
		ipPrefixes: []string{
			"200.142.", "191.36.", "200.225.", "187.72.",
			"200.171.", "177.37.", "179.191.", "201.17.",
		},
		hostnameMarkers: []string{"telefonica", "vivo", "speedy", "telesp"},
		priority:        10,
	},
	{
		provider: ProviderNet,
		ipPrefixes: []string{
			"201.23.", "201.6.", "179.184.", "201.22.",
			"170.79.", "170.244.", "45.5.",
		},
		hostnameMarkers: []string{"claro", "netflex", "embratel", "virtua"},
		priority:        10,
	},
	{
		provider:        ProviderOi,
		ipPrefixes:      []string{"200.147.", "200.144.", "201.35."},
		hostnameMarkers: []string{"oi.com.br", "telemar", "velox"},
		priority:        8,
	},
	{
		provider:        ProviderTim,
		ipPrefixes:      []string{"187.4.", "200.155."},
		hostnameMarkers: []string{"tim.com.br", "intelig"},
		priority:        8,
	},
	{
		provider:        ProviderClaro,
		ipPrefixes:      []string{"187.39."},
		hostnameMarkers: []string{"virtua.com.br"},
		priority:        8,
	},
}

// ipService is one public address-echo endpoint. jsonField is empty for
// plain-text responses.
type ipService struct {
	url       string
	jsonField string
}

var defaultServices = []ipService{
	{url: "https://httpbin.org/ip", jsonField: "origin"},
	{url: "https://api.ipify.org"},
	{url: "https://ipinfo.io/ip"},
}

type Detector struct {
	client   *http.Client
	services []ipService
	log      *logging.Logger
}

func NewDetector() *Detector {
	return &Detector{
		client:   &http.Client{Timeout: 10 * time.Second},
		services: defaultServices,
		log:      logging.NewLogger("isp"),
	}
}

// Detect runs the full pipeline: public IP, reverse DNS, provider match.
// The returned info always carries whatever was discovered; the error is
// non-nil only when not even the public address could be found.
func (d *Detector) Detect(ctx context.Context) (*types.ISPInfo, error) {
	publicIP, err := d.PublicIP(ctx)
	if err != nil {
		return nil, err
	}

	hostname := reverseLookup(publicIP)

	info := Classify(publicIP, hostname)
	info.PublicIP = publicIP
	info.Hostname = hostname
	info.IPType = ClassifyIPType(publicIP)

	d.log.Debug("isp detected",
		logging.Field{Key: "provider", Value: info.Provider},
		logging.Field{Key: "public_ip", Value: publicIP},
		logging.Field{Key: "confidence", Value: info.ConfidenceLevel})
	return info, nil
}

// PublicIP queries the echo services in order and returns the first valid
// IPv4 address.
func (d *Detector) PublicIP(ctx context.Context) (string, error) {
	var lastErr error
	for _, svc := range d.services {
		ip, err := d.query(ctx, svc)
		if err != nil {
			lastErr = err
			d.log.Debug("ip service failed",
				logging.Field{Key: "url", Value: svc.url},
				logging.Field{Key: "error", Value: err})
			continue
		}
		if net.ParseIP(ip) != nil {
			return ip, nil
		}
	}
	return "", diagerr.ErrISPDetection("could not determine public IP", lastErr)
}

func (d *Detector) query(ctx context.Context, svc ipService) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc.url, nil)
	if err != nil {
		return "", err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", err
	}

	if svc.jsonField != "" {
		var payload map[string]string
		if err := json.Unmarshal(body, &payload); err != nil {
			return "", err
		}
		// httpbin may report "ip1, ip2" behind proxies; first one wins.
		ip := payload[svc.jsonField]
		if idx := strings.IndexByte(ip, ','); idx >= 0 {
			ip = ip[:idx]
		}
		return strings.TrimSpace(ip), nil
	}
	return strings.TrimSpace(string(body)), nil
}

// Classify matches an address and optional hostname against the known
// provider rules. It always returns a value; an unmatched input yields the
// unknown provider at zero confidence.
func Classify(ip, hostname string) *types.ISPInfo {
	bestProvider := ProviderUnknown
	bestScore := 0

	lowered := strings.ToLower(hostname)
	for _, r := range detectionRules {
		score := 0
		for _, prefix := range r.ipPrefixes {
			if strings.HasPrefix(ip, prefix) {
				score += r.priority * 2
				break
			}
		}
		if score == 0 && lowered != "" {
			for _, marker := range r.hostnameMarkers {
				if strings.Contains(lowered, marker) {
					score += r.priority
					break
				}
			}
		}
		if score > bestScore {
			bestScore = score
			bestProvider = r.provider
		}
	}

	confidence := float64(bestScore) / 10.0
	if confidence > 1 {
		confidence = 1
	}
	return &types.ISPInfo{
		Provider:        bestProvider,
		ConfidenceLevel: confidence,
	}
}

// ClassifyIPType reports whether an address is RFC 1918 private or public.
func ClassifyIPType(ip string) types.IPType {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return types.IPTypeUnknown
	}
	if parsed.IsPrivate() || parsed.IsLoopback() {
		return types.IPTypePrivate
	}
	return types.IPTypePublic
}

func reverseLookup(ip string) string {
	names, err := net.LookupAddr(ip)
	if err != nil || len(names) == 0 {
		return ""
	}
	return strings.TrimSuffix(names[0], ".")
}
