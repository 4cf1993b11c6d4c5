package store

import (
	"context"
	"fmt"

	"github.com/wonny/billflow/backend/internal/contracts"
	"github.com/wonny/billflow/backend/pkg/httputil"
)

// RemoteStore fetches a JSON contract export over HTTP with retry
type RemoteStore struct {
	client *httputil.Client
	url    string
}

// NewRemoteStore creates a store reading from url
func NewRemoteStore(client *httputil.Client, url string) *RemoteStore {
	return &RemoteStore{client: client, url: url}
}

// Name implements contracts.Store
func (s *RemoteStore) Name() string {
	return "url:" + s.url
}

// Load implements contracts.Store
func (s *RemoteStore) Load(ctx context.Context) (contracts.Portfolio, error) {
	var p contracts.Portfolio
	if err := s.client.GetJSON(ctx, s.url, &p); err != nil {
		return nil, fmt.Errorf("fetch contracts: %w", err)
	}
	if p == nil {
		p = contracts.Portfolio{}
	}
	if err := p.ValidateUnique(); err != nil {
		return nil, err
	}
	return p, nil
}
