package milvus

import (
	"context"
	"fmt"
	"sync"

	"github.com/milvus-io/milvus-sdk-go/v2/client"

	"docqa/internal/config"
)

var (
	instance *Client
	once     sync.Once
	initErr  error
)

// Client wraps the Milvus SDK client. Collection schema management lives in
// the vector store; this wrapper only owns the connection lifecycle.
type Client struct {
	Client client.Client
	Config *config.MilvusConfig
}

// GetClient creates the singleton Milvus connection on first call and returns
// it on every subsequent call.
func GetClient(ctx context.Context, cfg *config.MilvusConfig) (*Client, error) {
	once.Do(func() {
		c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
		if err != nil {
			initErr = fmt.Errorf("failed to connect to Milvus at %s: %w", cfg.Address, err)
			return
		}
		instance = &Client{Client: c, Config: cfg}
	})
	return instance, initErr
}

// HealthCheck verifies the connection by listing collections.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.Client == nil {
		return fmt.Errorf("milvus client is not initialized")
	}
	if _, err := c.Client.ListCollections(ctx); err != nil {
		return fmt.Errorf("milvus health check failed: %w", err)
	}
	return nil
}

// Close shuts the connection down.
func (c *Client) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
}
