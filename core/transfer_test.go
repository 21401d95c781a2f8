package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
)

type chunkCall struct {
	offset int64
	length int
}

// mockTransferAPI records every collaborator call the engine makes.
type mockTransferAPI struct {
	entry       Record
	entryErr    error
	chunks      []chunkCall
	chunkData   bytes.Buffer
	failOffset  int64 // write at this offset fails; -1 disables
	body        []byte
	openErr     error
	createCalls int
	openCalls   int
}

func newMockTransferAPI() *mockTransferAPI {
	return &mockTransferAPI{
		entry:      Record{"$key": 77, "name": "test.iso"},
		failOffset: -1,
	}
}

func (m *mockTransferAPI) CreateEntry(_ context.Context, name string, totalBytes int64, _ Params) (Record, error) {
	m.createCalls++
	if m.entryErr != nil {
		return nil, m.entryErr
	}
	return m.entry, nil
}

func (m *mockTransferAPI) WriteChunk(_ context.Context, _ any, offset int64, chunk []byte) error {
	if m.failOffset >= 0 && offset == m.failOffset {
		return fmt.Errorf("boom")
	}
	m.chunks = append(m.chunks, chunkCall{offset: offset, length: len(chunk)})
	m.chunkData.Write(chunk)
	return nil
}

func (m *mockTransferAPI) OpenDownload(_ context.Context, _ any, _ string) (io.ReadCloser, error) {
	m.openCalls++
	if m.openErr != nil {
		return nil, m.openErr
	}
	return io.NopCloser(bytes.NewReader(m.body)), nil
}

func writeTempFile(t *testing.T, size int) string {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := filepath.Join(t.TempDir(), "payload.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUploadFileChunkOrderingAndCompleteness(t *testing.T) {
	// 600000 bytes with 262144-byte chunks: offsets 0, 262144, 524288 with
	// lengths 262144, 262144, 75712.
	const size = 600000
	localPath := writeTempFile(t, size)
	api := newMockTransferAPI()

	entry, err := UploadFile(context.Background(), api, localPath, "test.iso", nil, DefaultChunkSize, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.RecordKey() != 77 {
		t.Errorf("expected the created entry back, got %v", entry)
	}

	want := []chunkCall{
		{offset: 0, length: 262144},
		{offset: 262144, length: 262144},
		{offset: 524288, length: 75712},
	}
	if len(api.chunks) != len(want) {
		t.Fatalf("expected %d chunk writes, got %d", len(want), len(api.chunks))
	}
	var total int64
	for i, chunk := range api.chunks {
		if chunk != want[i] {
			t.Errorf("chunk %d = %+v, want %+v", i, chunk, want[i])
		}
		total += int64(chunk.length)
	}
	if total != size {
		t.Errorf("chunk lengths sum to %d, want %d", total, size)
	}

	original, _ := os.ReadFile(localPath)
	if !bytes.Equal(api.chunkData.Bytes(), original) {
		t.Error("reassembled chunk data differs from the source file")
	}
}

func TestUploadFileExactChunkMultiple(t *testing.T) {
	localPath := writeTempFile(t, int(DefaultChunkSize)*2)
	api := newMockTransferAPI()

	if _, err := UploadFile(context.Background(), api, localPath, "even.bin", nil, DefaultChunkSize, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(api.chunks) != 2 {
		t.Fatalf("expected exactly ceil(N/C)=2 chunk writes, got %d", len(api.chunks))
	}
	for _, chunk := range api.chunks {
		if int64(chunk.length) != DefaultChunkSize {
			t.Errorf("chunk at %d has length %d, want %d", chunk.offset, chunk.length, DefaultChunkSize)
		}
	}
}

func TestUploadFileZeroBytes(t *testing.T) {
	localPath := writeTempFile(t, 0)
	api := newMockTransferAPI()

	entry, err := UploadFile(context.Background(), api, localPath, "empty.txt", nil, DefaultChunkSize, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.createCalls != 1 {
		t.Errorf("entry must be created even for an empty file, got %d create calls", api.createCalls)
	}
	if len(api.chunks) != 0 {
		t.Errorf("expected zero chunk writes for an empty file, got %d", len(api.chunks))
	}
	if !entry.HasKey() {
		t.Errorf("expected the created entry back, got %v", entry)
	}
}

func TestUploadFileEntryCreationFailure(t *testing.T) {
	localPath := writeTempFile(t, 100)

	api := newMockTransferAPI()
	api.entryErr = fmt.Errorf("quota exceeded")
	_, err := UploadFile(context.Background(), api, localPath, "f.bin", nil, DefaultChunkSize, nil)
	if !IsEntryCreationErr(err) {
		t.Fatalf("expected EntryCreationError, got %v", err)
	}
	if len(api.chunks) != 0 {
		t.Errorf("no chunk may be written after entry creation fails")
	}

	api = newMockTransferAPI()
	api.entry = Record{"name": "f.bin"} // no key
	_, err = UploadFile(context.Background(), api, localPath, "f.bin", nil, DefaultChunkSize, nil)
	if !IsEntryCreationErr(err) {
		t.Fatalf("expected EntryCreationError for a keyless entry, got %v", err)
	}
}

func TestUploadFileChunkFailureAborts(t *testing.T) {
	localPath := writeTempFile(t, int(DefaultChunkSize)*3)
	api := newMockTransferAPI()
	api.failOffset = DefaultChunkSize // second chunk fails

	_, err := UploadFile(context.Background(), api, localPath, "f.bin", nil, DefaultChunkSize, nil)
	if !IsChunkWriteErr(err) {
		t.Fatalf("expected ChunkWriteError, got %v", err)
	}
	chunkErr := err.(*ChunkWriteError)
	if chunkErr.Offset != DefaultChunkSize {
		t.Errorf("error reports offset %d, want %d", chunkErr.Offset, DefaultChunkSize)
	}
	// Fail fast: only the successful first chunk was recorded, nothing after
	// the failed offset.
	if len(api.chunks) != 1 || api.chunks[0].offset != 0 {
		t.Errorf("expected the upload to stop at the failed chunk, recorded %+v", api.chunks)
	}
}

func TestUploadFileProgress(t *testing.T) {
	localPath := writeTempFile(t, int(DefaultChunkSize)+100)
	api := newMockTransferAPI()

	var sessions []TransferSession
	_, err := UploadFile(context.Background(), api, localPath, "f.bin", nil, DefaultChunkSize, func(s TransferSession) {
		sessions = append(sessions, s)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected one progress event per chunk, got %d", len(sessions))
	}
	if sessions[0].BytesTransferred != DefaultChunkSize {
		t.Errorf("first event at %d bytes, want %d", sessions[0].BytesTransferred, DefaultChunkSize)
	}
	last := sessions[len(sessions)-1]
	if last.BytesTransferred != last.TotalBytes {
		t.Errorf("final event is not complete: %d/%d", last.BytesTransferred, last.TotalBytes)
	}
	if last.Percent() != 100 {
		t.Errorf("final percent = %v, want 100", last.Percent())
	}
	if prev, cur := sessions[0].BytesTransferred, last.BytesTransferred; cur < prev {
		t.Errorf("BytesTransferred went backwards: %d then %d", prev, cur)
	}
}

func TestUploadFileProgressPanicSwallowed(t *testing.T) {
	localPath := writeTempFile(t, 100)
	api := newMockTransferAPI()

	_, err := UploadFile(context.Background(), api, localPath, "f.bin", nil, DefaultChunkSize, func(TransferSession) {
		panic("broken progress bar")
	})
	if err != nil {
		t.Fatalf("progress sink panic leaked into the upload outcome: %v", err)
	}
}

func TestDownloadFileOverwriteGuard(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.iso")
	if err := os.WriteFile(dest, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	api := newMockTransferAPI()

	_, err := DownloadFile(context.Background(), api, 77, "out.iso", dest, false, nil)
	if !IsDestinationExistsErr(err) {
		t.Fatalf("expected DestinationExistsError, got %v", err)
	}
	if api.openCalls != 0 {
		t.Errorf("destination check must run before any network call, got %d calls", api.openCalls)
	}
	if data, _ := os.ReadFile(dest); string(data) != "old" {
		t.Errorf("existing destination was touched: %q", data)
	}
}

func TestDownloadFileMissingParentDirectory(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "missing", "out.iso")
	api := newMockTransferAPI()

	_, err := DownloadFile(context.Background(), api, 77, "out.iso", dest, false, nil)
	if !IsDestinationDirectoryErr(err) {
		t.Fatalf("expected DestinationDirectoryError, got %v", err)
	}
	if api.openCalls != 0 {
		t.Errorf("directory check must run before any network call, got %d calls", api.openCalls)
	}
}

func TestDownloadFileStreamsBody(t *testing.T) {
	body := make([]byte, 100000)
	for i := range body {
		body[i] = byte(i % 13)
	}
	api := newMockTransferAPI()
	api.body = body
	dest := filepath.Join(t.TempDir(), "out.iso")

	var lastSession TransferSession
	path, err := DownloadFile(context.Background(), api, 77, "out.iso", dest, false, func(s TransferSession) {
		lastSession = s
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != dest {
		t.Errorf("returned path %q, want %q", path, dest)
	}
	written, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(written, body) {
		t.Error("downloaded bytes differ from the remote body")
	}
	if lastSession.BytesTransferred != int64(len(body)) {
		t.Errorf("progress saw %d bytes, want %d", lastSession.BytesTransferred, len(body))
	}
}

func TestDownloadFileOverwrite(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.iso")
	if err := os.WriteFile(dest, []byte("old contents that are longer"), 0o644); err != nil {
		t.Fatal(err)
	}
	api := newMockTransferAPI()
	api.body = []byte("new")

	if _, err := DownloadFile(context.Background(), api, 77, "out.iso", dest, true, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data, _ := os.ReadFile(dest); string(data) != "new" {
		t.Errorf("overwrite left %q in place", data)
	}
}

func TestDownloadFileOpenFailure(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.iso")
	api := newMockTransferAPI()
	api.openErr = errors.New("remote gone")

	_, err := DownloadFile(context.Background(), api, 77, "out.iso", dest, false, nil)
	if err == nil || err.Error() != "remote gone" {
		t.Fatalf("expected the transport error back, got %v", err)
	}
	if _, statErr := os.Stat(dest); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("no destination file may be created when the request fails")
	}
}

func TestTransferSessionPercent(t *testing.T) {
	tests := []struct {
		transferred, total int64
		want               float64
	}{
		{0, 0, 100},
		{0, 200, 0},
		{100, 200, 50},
		{75712, 600000, 13},
		{600000, 600000, 100},
	}
	for _, tt := range tests {
		s := TransferSession{BytesTransferred: tt.transferred, TotalBytes: tt.total}
		if got := s.Percent(); got != tt.want {
			t.Errorf("Percent(%d/%d) = %v, want %v", tt.transferred, tt.total, got, tt.want)
		}
	}
}
