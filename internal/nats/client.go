// Package nats provides the NATS connection used for task events.
package nats

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// Client wraps a nats connection.
type Client struct {
	Conn *nats.Conn
}

// New connects to the given NATS URL.
func New(natsURL string) (*Client, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &Client{Conn: conn}, nil
}

// Close closes the nats connection.
func (c *Client) Close() {
	c.Conn.Close()
}

// IsConnected returns true if connected to nats.
func (c *Client) IsConnected() bool {
	return c.Conn.IsConnected()
}
