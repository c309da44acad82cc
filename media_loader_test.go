package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mediaErrCode(t *testing.T, err error) int {
	t.Helper()
	var me *MediaError
	require.True(t, errors.As(err, &me), "expected MediaError, got %v", err)
	return me.Code
}

func TestLoadMedia(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tune.sid")
	want := buildSIDHeader("PSID", 2, 0x1000, 0x1000, 0x1003, 1, 1, 0, 0)
	require.NoError(t, os.WriteFile(path, want, 0o644))

	got, err := loadMedia(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadMedia_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := loadMedia("")
	assert.Equal(t, MEDIA_ERR_PATH_INVALID, mediaErrCode(t, err))

	_, err = loadMedia(filepath.Join(dir, "missing.sid"))
	assert.Equal(t, MEDIA_ERR_NOT_FOUND, mediaErrCode(t, err))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "not found")

	_, err = loadMedia(dir)
	assert.Equal(t, MEDIA_ERR_PATH_INVALID, mediaErrCode(t, err))

	big := filepath.Join(dir, "big.sid")
	require.NoError(t, os.WriteFile(big, make([]byte, MEDIA_MAX_SIZE+1), 0o644))
	_, err = loadMedia(big)
	assert.Equal(t, MEDIA_ERR_TOO_LARGE, mediaErrCode(t, err))
}

func TestDetectMediaType(t *testing.T) {
	assert.Equal(t, uint32(MEDIA_TYPE_SID), detectMediaType([]byte("PSID\x00\x02")))
	assert.Equal(t, uint32(MEDIA_TYPE_SID), detectMediaType([]byte("RSID\x00\x02")))
	assert.Equal(t, uint32(MEDIA_TYPE_NONE), detectMediaType([]byte("XSID\x00\x02")))
	assert.Equal(t, uint32(MEDIA_TYPE_NONE), detectMediaType([]byte("PS")))
}

func TestDescribeInput(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 400)...)
	assert.Equal(t, "image/png (png)", describeInput(png))

	sid := buildSIDHeader("PSID", 2, 0x1000, 0x1000, 0x1003, 1, 1, 0, 0)
	assert.Equal(t, "audio/prs.sid (sid)", describeInput(sid))

	assert.Equal(t, "unrecognised data", describeInput([]byte("XSID plain bytes")))
	assert.Equal(t, "unrecognised data", describeInput(nil))
}
