package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pinboard-api/media"
)

type Gateway struct {
	mock.Mock
}

func (m *Gateway) Upload(ctx context.Context, data []byte, folder string) (*media.Asset, error) {
	args := m.Called(ctx, data, folder)
	if a := args.Get(0); a != nil {
		return a.(*media.Asset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Gateway) Destroy(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}

type AssetCleaner struct {
	mock.Mock
}

func (m *AssetCleaner) CleanupAsset(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}
