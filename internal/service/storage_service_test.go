package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms_console_backend/internal/config"
	"lms_console_backend/internal/repository"
	"lms_console_backend/internal/testutil"
	"lms_console_backend/internal/util"
)

func localStorage(t *testing.T) *StorageService {
	t.Helper()
	return NewStorageService(&config.Config{Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir()}})
}

func TestStorageService_LocalArchive(t *testing.T) {
	ctx := context.Background()
	storage := localStorage(t)
	assert.Equal(t, util.StorageLocal, storage.Backend)
	batch := uuid.NewString()

	url, err := storage.ArchiveImport(ctx, batch, []byte("title\nA\n"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/imports/"+batch+".csv", url)

	data, err := storage.LoadImport(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, "title\nA\n", string(data))

	require.NoError(t, storage.DeleteImport(ctx, batch))
	_, err = storage.LoadImport(ctx, batch)
	assert.ErrorIs(t, err, util.ErrArchiveNotFound)
	assert.ErrorIs(t, storage.DeleteImport(ctx, batch), util.ErrArchiveNotFound)
}

func TestStorageService_UnknownBackendFallsBackToLocal(t *testing.T) {
	storage := NewStorageService(&config.Config{Storage: config.StorageConfig{Type: "s3", LocalPath: t.TempDir()}})
	assert.Equal(t, util.StorageLocal, storage.Backend)
}

func TestImportArchiveKey(t *testing.T) {
	id := uuid.NewString()
	key, err := ImportArchiveKey(id)
	require.NoError(t, err)
	assert.Equal(t, "imports/"+id+".csv", key)

	for _, bad := range []string{"", "batch-1", "../../etc/passwd"} {
		_, err := ImportArchiveKey(bad)
		assert.ErrorIs(t, err, util.ErrInvalidBatchID, bad)
	}
}

func TestLocalArchive_RejectsEscapingKeys(t *testing.T) {
	root := t.TempDir()
	store := &LocalArchive{Root: root}

	assert.Error(t, store.Put(context.Background(), "../outside.csv", []byte("x"), util.MimeCSV))
	_, err := os.Stat(filepath.Join(filepath.Dir(root), "outside.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestImportBatch_ArchivesUpload(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	storage := localStorage(t)
	svc := NewImportService(NewAssessmentService(repository.NewAssessmentRepository(db)), storage, ImportSettings{ArchiveUploads: true})

	file := importHeader + "Archived,1,assignment,,,draft,[],[]\n"
	report, err := svc.ImportBatch(ctx, strings.NewReader(file))
	require.NoError(t, err)
	key, err := ImportArchiveKey(report.BatchID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/"+key, report.ArchiveURL)

	data, err := svc.Archive(ctx, report.BatchID)
	require.NoError(t, err)
	assert.Equal(t, file, string(data))

	require.NoError(t, svc.DeleteArchive(ctx, report.BatchID))
	_, err = svc.Archive(ctx, report.BatchID)
	assert.ErrorIs(t, err, util.ErrArchiveNotFound)
}

func TestImportService_ArchiveDisabled(t *testing.T) {
	svc := NewImportService(nil, nil, ImportSettings{})
	_, err := svc.Archive(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, util.ErrArchiveDisabled)
	assert.ErrorIs(t, svc.DeleteArchive(context.Background(), uuid.NewString()), util.ErrArchiveDisabled)
}
