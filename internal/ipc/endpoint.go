package ipc

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

const defaultBridgeAddr = "127.0.0.1:47864"

// Endpoint describes where the command bridge listens for the frontend.
type Endpoint struct {
	Network string
	Address string
}

// NewEndpoint returns a TCP endpoint for addr, or the default loopback
// address when addr is empty.
func NewEndpoint(addr string) Endpoint {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = defaultBridgeAddr
	}
	return Endpoint{Network: "tcp", Address: addr}
}

// Listen binds to the configured endpoint.
func (e Endpoint) Listen() (net.Listener, error) {
	return net.Listen(e.Network, e.Address)
}

// DialContext establishes a client connection with sensible timeouts.
func (e Endpoint) DialContext(ctx context.Context) (net.Conn, error) {
	d := &net.Dialer{Timeout: 5 * time.Second}
	return d.DialContext(ctx, e.Network, e.Address)
}

// URL returns the base HTTP URL the frontend uses to reach the bridge.
func (e Endpoint) URL() string {
	return "http://" + e.Address
}

// String provides a readable representation for logs.
func (e Endpoint) String() string {
	return fmt.Sprintf("%s://%s", e.Network, e.Address)
}
