package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// TransferDirection tags a TransferSession as an upload or a download.
type TransferDirection int

const (
	TransferUpload TransferDirection = iota
	TransferDownload
)

func (d TransferDirection) String() string {
	if d == TransferDownload {
		return "download"
	}
	return "upload"
}

// TransferSession tracks one file move. Only the transfer engine mutates it:
// BytesTransferred advances after the server acknowledges a chunk write
// (upload) or after bytes hit the local disk (download), and never decreases.
type TransferSession struct {
	LocalPath        string
	RemoteID         any
	RemoteName       string
	TotalBytes       int64
	BytesTransferred int64
	ChunkSize        int64
	Direction        TransferDirection
}

// Percent reports completion as round(transferred/total*100). A zero-byte
// transfer is 100% done.
func (s TransferSession) Percent() float64 {
	if s.TotalBytes == 0 {
		return 100
	}
	return math.Round(float64(s.BytesTransferred) / float64(s.TotalBytes) * 100)
}

func (s TransferSession) String() string {
	return fmt.Sprintf("%s '%s' (%d/%d bytes)", s.Direction, s.RemoteName, s.BytesTransferred, s.TotalBytes)
}

// TransferProgressFunc receives a copy of the session after every acknowledged
// chunk (upload) or write burst (download). Same best-effort contract as
// ProgressFunc: panics in the sink are swallowed.
type TransferProgressFunc func(TransferSession)

func emitTransferProgress(progress TransferProgressFunc, session TransferSession) {
	if progress == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	progress(session)
}

// FileTransferAPI is the server-side collaborator of the transfer engine.
// The files resource implements it over the REST session.
type FileTransferAPI interface {
	// CreateEntry creates the remote file catalog entry with its declared
	// total size and metadata, returning the row with the new key.
	CreateEntry(ctx context.Context, name string, totalBytes int64, metadata Params) (Record, error)
	// WriteChunk applies one positioned write. Chunks arrive strictly in
	// increasing offset order, one at a time.
	WriteChunk(ctx context.Context, remoteID any, offset int64, chunk []byte) error
	// OpenDownload starts a streamed download of the remote file body.
	// The caller owns the returned ReadCloser.
	OpenDownload(ctx context.Context, remoteID any, filename string) (io.ReadCloser, error)
}

// UploadFile moves a local file to the server: one entry-creation request,
// then sequential positioned writes of chunkSize bytes (the final chunk may
// be shorter). A file of N bytes produces exactly ceil(N/chunkSize) chunk
// writes at offsets 0, chunkSize, 2*chunkSize, ...
//
// Any chunk failure aborts the upload with a *ChunkWriteError; no chunk is
// retried here. The remote entry may be left incomplete on abort and its
// cleanup is the caller's responsibility. The local file handle is released
// on every exit path.
func UploadFile(
	ctx context.Context,
	api FileTransferAPI,
	localPath, remoteName string,
	metadata Params,
	chunkSize int64,
	progress TransferProgressFunc,
) (Record, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("'%s' is a directory, not a file", localPath)
	}
	totalBytes := info.Size()

	file, err := os.Open(localPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	entry, err := api.CreateEntry(ctx, remoteName, totalBytes, metadata)
	if err != nil {
		return nil, &EntryCreationError{Name: remoteName, Reason: err.Error()}
	}
	if !entry.HasKey() {
		return nil, &EntryCreationError{Name: remoteName, Reason: "server response carries no key"}
	}
	remoteID := entry.RecordKey()

	session := TransferSession{
		LocalPath:  localPath,
		RemoteID:   remoteID,
		RemoteName: remoteName,
		TotalBytes: totalBytes,
		ChunkSize:  chunkSize,
		Direction:  TransferUpload,
	}

	buf := make([]byte, chunkSize)
	var offset int64
	for offset < totalBytes {
		n, readErr := io.ReadFull(file, buf)
		if readErr == io.ErrUnexpectedEOF {
			readErr = nil
		}
		if n == 0 {
			// Source ended early. Stop rather than write an empty chunk.
			break
		}
		if readErr != nil && readErr != io.EOF {
			return nil, readErr
		}

		if err = api.WriteChunk(ctx, remoteID, offset, buf[:n]); err != nil {
			return nil, &ChunkWriteError{Name: remoteName, Offset: offset, Err: err}
		}
		offset += int64(n)
		session.BytesTransferred = offset
		emitTransferProgress(progress, session)
	}

	return entry, nil
}

// DownloadFile streams the remote file body to destinationPath in one
// request.
//
// Both destination preconditions are checked before any network I/O: the
// parent directory must exist, and an existing destination fails with
// *DestinationExistsError unless overwrite is set. A network or disk failure
// mid-stream leaves the partially written destination in place.
func DownloadFile(
	ctx context.Context,
	api FileTransferAPI,
	remoteID any,
	filename, destinationPath string,
	overwrite bool,
	progress TransferProgressFunc,
) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	parent := filepath.Dir(destinationPath)
	if info, err := os.Stat(parent); err != nil || !info.IsDir() {
		return "", &DestinationDirectoryError{Path: parent}
	}
	if _, err := os.Stat(destinationPath); err == nil {
		if !overwrite {
			return "", &DestinationExistsError{Path: destinationPath}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	body, err := api.OpenDownload(ctx, remoteID, filename)
	if err != nil {
		return "", err
	}
	defer body.Close()

	out, err := os.Create(destinationPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	session := TransferSession{
		LocalPath:  destinationPath,
		RemoteID:   remoteID,
		RemoteName: filename,
		Direction:  TransferDownload,
	}

	writer := &progressWriter{out: out, session: &session, progress: progress}
	if _, err = io.Copy(writer, body); err != nil {
		return "", err
	}
	if err = out.Sync(); err != nil {
		return "", err
	}
	return destinationPath, nil
}

// progressWriter counts bytes as they land on disk. The remote size is not
// known up front for downloads, so TotalBytes tracks BytesTransferred and
// the percent stays at 100 while the stream runs.
type progressWriter struct {
	out      io.Writer
	session  *TransferSession
	progress TransferProgressFunc
}

func (w *progressWriter) Write(p []byte) (int, error) {
	n, err := w.out.Write(p)
	if n > 0 {
		w.session.BytesTransferred += int64(n)
		w.session.TotalBytes = w.session.BytesTransferred
		emitTransferProgress(w.progress, *w.session)
	}
	return n, err
}
