package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRows struct {
	rows    [][3]string
	pos     int
	scanErr error
	iterErr error
}

func (f *fakeRows) Next() bool {
	if f.pos >= len(f.rows) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	if f.scanErr != nil {
		return f.scanErr
	}
	row := f.rows[f.pos-1]
	*dest[0].(*string) = row[0]
	*dest[1].(*string) = row[1]
	*dest[2].(*string) = row[2]
	return nil
}

func (f *fakeRows) Err() error { return f.iterErr }

func TestScanChunks(t *testing.T) {
	rows := &fakeRows{rows: [][3]string{
		{"1", "first chunk", `{"source":"a"}`},
		{"2", "second chunk", ""},
	}}

	chunks, err := scanChunks(rows)

	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "1", chunks[0].ID)
	assert.Equal(t, "first chunk", chunks[0].Chunks)
	assert.Equal(t, `{"source":"a"}`, chunks[0].Metadata)
	assert.Equal(t, "second chunk", chunks[1].Chunks)
}

func TestScanChunksScanError(t *testing.T) {
	rows := &fakeRows{
		rows:    [][3]string{{"1", "x", ""}},
		scanErr: errors.New("bad row"),
	}

	_, err := scanChunks(rows)
	require.Error(t, err)
}

func TestScanChunksIterationError(t *testing.T) {
	rows := &fakeRows{iterErr: errors.New("connection reset")}

	_, err := scanChunks(rows)
	require.Error(t, err)
}
