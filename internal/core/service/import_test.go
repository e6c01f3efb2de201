package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/webshop/backend/internal/core/domain"
)

func writeImportFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestImportService_ImportFile_AppliesValidRows(t *testing.T) {
	dir := t.TempDir()
	products := new(MockProductRepository)
	s := NewImportService(dir, AcceptPartial, products)
	ctx := context.Background()

	writeImportFile(t, dir, "drop.csv",
		"Product ID,Name,Description,Price\n"+
			"101,Widget,a widget,9.50\n"+
			"102,Gadget,,4.00\n")

	products.On("UpsertImported", ctx, domain.Product{
		ID: 101, Name: "Widget", Description: "a widget", Price: 9.5,
	}).Return(true, nil).Once()
	products.On("UpsertImported", ctx, domain.Product{
		ID: 102, Name: "Gadget", Price: 4.0,
	}).Return(false, nil).Once()

	result, err := s.ImportFile(ctx, "drop.csv")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Updated)
	assert.Empty(t, result.Errors)
	products.AssertExpectations(t)

	// Moved to processed/ with a log alongside.
	entries, err := os.ReadDir(filepath.Join(dir, "processed"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestImportService_ImportFile_AcceptPartialKeepsGoodRows(t *testing.T) {
	dir := t.TempDir()
	products := new(MockProductRepository)
	s := NewImportService(dir, AcceptPartial, products)
	ctx := context.Background()

	writeImportFile(t, dir, "drop.csv",
		"product_id,name,price\n"+
			"101,Widget,9.50\n"+
			",Nameless,1.00\n"+
			"103,Cheap,-5\n")

	products.On("UpsertImported", ctx, mock.Anything).Return(true, nil).Once()

	result, err := s.ImportFile(ctx, "drop.csv")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "missing product_id")
	assert.Contains(t, result.Errors[1], "invalid price")
}

func TestImportService_ImportFile_RequireCleanRejectsPartial(t *testing.T) {
	dir := t.TempDir()
	products := new(MockProductRepository)
	s := NewImportService(dir, RequireClean, products)
	ctx := context.Background()

	writeImportFile(t, dir, "drop.csv",
		"product_id,name,price\n"+
			"101,Widget,9.50\n"+
			",Nameless,1.00\n")

	products.On("UpsertImported", ctx, mock.Anything).Return(true, nil).Once()

	result, err := s.ImportFile(ctx, "drop.csv")
	require.NoError(t, err)
	assert.False(t, result.Success)

	entries, err := os.ReadDir(filepath.Join(dir, "errors"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestImportService_ImportFile_MissingFile(t *testing.T) {
	dir := t.TempDir()
	s := NewImportService(dir, AcceptPartial, new(MockProductRepository))

	_, err := s.ImportFile(context.Background(), "absent.csv")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImportService_ImportFile_RejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	s := NewImportService(dir, AcceptPartial, new(MockProductRepository))

	_, err := s.ImportFile(context.Background(), "../etc/passwd")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestImportService_ListPending_OnlyCSVFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewImportService(dir, AcceptPartial, new(MockProductRepository))

	writeImportFile(t, dir, "a.csv", "product_id,name,price\n")
	writeImportFile(t, dir, "note.txt", "ignore me")

	files, err := s.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.csv", files[0].Name)
	assert.NotZero(t, files[0].Size)
}

func TestImportService_ImportAll_ProcessesEveryPendingFile(t *testing.T) {
	dir := t.TempDir()
	products := new(MockProductRepository)
	s := NewImportService(dir, AcceptPartial, products)
	ctx := context.Background()

	writeImportFile(t, dir, "a.csv", "product_id,name,price\n1,A,1.0\n")
	writeImportFile(t, dir, "b.csv", "product_id,name,price\n2,B,2.0\n")

	products.On("UpsertImported", ctx, mock.Anything).Return(true, nil).Twice()

	results, err := s.ImportAll(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	products.AssertExpectations(t)
}
