package configbp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, DefaultRequestSizeLimit, cfg.RequestSizeLimit)
	require.Equal(t, DefaultPieceMinSize, cfg.PieceMinSize)
	require.Equal(t, DefaultPieceMaxSize, cfg.PieceMaxSize)
	require.Equal(t, DefaultRedirectMax, cfg.RedirectMax)
	require.Equal(t, DefaultRetryMax, cfg.RetryMax)
}

func TestParseHonorsExplicitValues(t *testing.T) {
	doc := "requestSizeLimit: 4096\ndefaultCompressType: gzip\nretryMax: 3\n"
	cfg, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, 4096, cfg.RequestSizeLimit)
	require.Equal(t, "gzip", cfg.DefaultCompressType)
	require.Equal(t, 3, cfg.RetryMax)
	require.Equal(t, DefaultRedirectMax, cfg.RedirectMax)
}

func TestWatcherPicksUpChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "srpc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("defaultCompressType: snappy\n"), 0o644))

	w, err := NewWatcher(context.Background(), path, nil)
	require.NoError(t, err)
	defer w.Stop()

	require.Equal(t, "snappy", w.Get().DefaultCompressType)

	require.NoError(t, os.WriteFile(path, []byte("defaultCompressType: gzip\n"), 0o644))

	require.Eventually(t, func() bool {
		return w.Get().DefaultCompressType == "gzip"
	}, 3*time.Second, 20*time.Millisecond)
}
