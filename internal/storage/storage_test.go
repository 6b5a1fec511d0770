package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiskPutAndOpen(t *testing.T) {
	disk := Disk{Root: t.TempDir(), BaseURL: "/files/"}
	ctx := context.Background()

	url, err := disk.Put(ctx, BucketDocuments, "orcamento_ORC-2026-00001.pdf", strings.NewReader("%PDF"), "application/pdf")
	require.NoError(t, err)
	require.Equal(t, "/files/documentos/orcamento_ORC-2026-00001.pdf", url)

	rc, err := disk.Open(ctx, BucketDocuments, "orcamento_ORC-2026-00001.pdf")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "%PDF", string(body))
}

func TestDiskRejectsTraversal(t *testing.T) {
	disk := Disk{Root: t.TempDir()}
	_, err := disk.Put(context.Background(), BucketProducts, "../../etc/passwd", strings.NewReader("x"), "")
	require.ErrorIs(t, err, ErrInvalidName)

	_, err = disk.Open(context.Background(), BucketProducts, "missing.png")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDiskHandlerServesFiles(t *testing.T) {
	disk := Disk{Root: t.TempDir()}
	_, err := disk.Put(context.Background(), BucketProducts, "p1/foto.jpg", strings.NewReader("img"), "image/jpeg")
	require.NoError(t, err)

	srv := http.StripPrefix("/files", disk.Handler())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/produtos/p1/foto.jpg", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "img", rec.Body.String())
}
