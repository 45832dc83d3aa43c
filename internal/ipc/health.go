package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/example/scripthub/internal/protocol"
)

// Health asks a host already listening on the endpoint for its health
// document. An error means no host answered.
func (e Endpoint) Health(ctx context.Context) (protocol.Health, error) {
	client := &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				return e.DialContext(ctx)
			},
		},
	}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.URL()+"/health", nil)
	if err != nil {
		return protocol.Health{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return protocol.Health{}, fmt.Errorf("reach bridge at %s: %w", e.Address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return protocol.Health{}, fmt.Errorf("bridge at %s answered %s", e.Address, resp.Status)
	}
	var h protocol.Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return protocol.Health{}, fmt.Errorf("decode health: %w", err)
	}
	return h, nil
}
