// Package probe answers "is outbound connectivity currently usable?".
package probe

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DefaultEndpoints mixes global and regional hosts so a partial outage of
// one provider does not read as "offline".
var DefaultEndpoints = []string{
	"https://www.google.com/generate_204",
	"https://www.cloudflare.com/cdn-cgi/trace",
	"https://www.booking.com",
	"https://yandex.ru",
}

// Prober issues a single probe request against a randomly chosen endpoint.
// A failed probe is not an error; the sync driver simply re-probes on a
// later pass.
type Prober struct {
	endpoints []string
	client    *http.Client
	log       zerolog.Logger
}

func New(endpoints []string, timeout time.Duration, logger *zerolog.Logger) *Prober {
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "probe").Logger()
	}

	return &Prober{
		endpoints: endpoints,
		client:    &http.Client{Timeout: timeout},
		log:       base,
	}
}

// Probe returns true iff one endpoint answers. Any response below 500
// counts: a captive portal's 4xx still proves an outbound path exists.
func (p *Prober) Probe(ctx context.Context) bool {
	endpoint := p.endpoints[rand.Intn(len(p.endpoints))]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		p.log.Error().Err(err).Str("endpoint", endpoint).Msg("build probe request")
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Debug().Err(err).Str("endpoint", endpoint).Msg("probe failed")
		return false
	}
	defer resp.Body.Close()

	ok := resp.StatusCode < http.StatusInternalServerError
	p.log.Debug().Str("endpoint", endpoint).Int("status", resp.StatusCode).Bool("ok", ok).Msg("probe")
	return ok
}
