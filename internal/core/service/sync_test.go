package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webshop/backend/internal/core/domain"
)

func TestSyncService_SyncFromERP_ReplacesCatalog(t *testing.T) {
	gateway := new(MockERPGateway)
	products := new(MockProductRepository)
	s := NewSyncService(gateway, products)
	ctx := context.Background()

	gateway.On("Products", ctx).Return([]domain.RawRecord{
		{"name": "Widget", "description": "a widget", "price": 9.5, "stock": float64(4)},
		{"productID": float64(17), "price": 1.0},
		{"price": 2.0},
	}, nil)
	products.On("ReplaceCatalog", ctx, []domain.Product{
		{Name: "Widget", Description: "a widget", Price: 9.5, Stock: 4},
		{Name: "17", Price: 1.0},
	}).Return(nil)

	report, err := s.SyncFromERP(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Synced)
	assert.Equal(t, 3, report.Total)
	products.AssertExpectations(t)
}

func TestSyncService_SyncFromERP_RepeatedRunsAreIdempotent(t *testing.T) {
	gateway := new(MockERPGateway)
	products := new(MockProductRepository)
	s := NewSyncService(gateway, products)
	ctx := context.Background()

	gateway.On("Products", ctx).Return([]domain.RawRecord{
		{"name": "Widget", "price": 9.5, "stock": float64(4)},
		{"name": "Gadget", "price": 4.0},
	}, nil).Twice()
	products.On("ReplaceCatalog", ctx, []domain.Product{
		{Name: "Widget", Price: 9.5, Stock: 4},
		{Name: "Gadget", Price: 4.0},
	}).Return(nil).Twice()

	first, err := s.SyncFromERP(ctx)
	require.NoError(t, err)
	second, err := s.SyncFromERP(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first.Total, first.Synced)
	products.AssertExpectations(t)
	gateway.AssertExpectations(t)
}

func TestSyncService_SyncFromERP_FallsBackToDirectEndpoint(t *testing.T) {
	gateway := new(MockERPGateway)
	products := new(MockProductRepository)
	s := NewSyncService(gateway, products)
	ctx := context.Background()

	gateway.On("Products", ctx).Return(nil, domain.ErrUpstreamError).Once()
	gateway.On("ProductsDirect", ctx).Return([]domain.RawRecord{
		{"name": "Widget", "price": 9.5},
	}, nil).Once()
	products.On("ReplaceCatalog", ctx, []domain.Product{
		{Name: "Widget", Price: 9.5},
	}).Return(nil)

	report, err := s.SyncFromERP(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Synced)
	gateway.AssertExpectations(t)
}

func TestSyncService_SyncFromERP_BothEndpointsFailing(t *testing.T) {
	gateway := new(MockERPGateway)
	products := new(MockProductRepository)
	s := NewSyncService(gateway, products)
	ctx := context.Background()

	gateway.On("Products", ctx).Return(nil, domain.ErrUpstreamUnavailable)
	gateway.On("ProductsDirect", ctx).Return(nil, domain.ErrUpstreamUnavailable)

	_, err := s.SyncFromERP(ctx)
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	products.AssertNotCalled(t, "ReplaceCatalog", ctx, nil)
}

func TestSyncService_SyncFromERP_EmptyCatalogClearsTable(t *testing.T) {
	gateway := new(MockERPGateway)
	products := new(MockProductRepository)
	s := NewSyncService(gateway, products)
	ctx := context.Background()

	gateway.On("Products", ctx).Return([]domain.RawRecord{}, nil)
	products.On("ReplaceCatalog", ctx, []domain.Product{}).Return(nil)

	report, err := s.SyncFromERP(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Synced)
	assert.Equal(t, 0, report.Total)
	products.AssertExpectations(t)
}
