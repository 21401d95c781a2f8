package untyped

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"

	"github.com/verge-io/go-verge-client/core"
)

// File is the media/file catalog resource. It implements core.FileTransferAPI
// so the chunked transfer engine can create entries, write positioned chunks
// and stream downloads through the session's raw-body methods.
type File struct {
	*core.VergeResource
}

var _ core.FileTransferAPI = (*File)(nil)

func (f *File) streamingSession() (core.StreamingSession, error) {
	ss, ok := f.Session().(core.StreamingSession)
	if !ok {
		return nil, fmt.Errorf("session %T does not support raw-body transfers", f.Session())
	}
	return ss, nil
}

// CreateEntry creates the remote file catalog entry with its declared size.
// Metadata keys (description, tier, ...) are merged into the body without
// overriding name or filesize.
func (f *File) CreateEntry(ctx context.Context, name string, totalBytes int64, metadata core.Params) (core.Record, error) {
	body := core.Params{
		"name":     name,
		"filesize": totalBytes,
	}
	if metadata != nil {
		body.Update(metadata, true)
	}
	return f.CreateWithContext(ctx, body)
}

// WriteChunk applies one positioned write to the remote file body. The offset
// rides in the query string and the chunk bytes go out as an octet-stream.
func (f *File) WriteChunk(ctx context.Context, remoteID any, offset int64, chunk []byte) error {
	ss, err := f.streamingSession()
	if err != nil {
		return err
	}
	path := core.BuildResourcePathWithID(f.GetResourcePath(), remoteID)
	path = fmt.Sprintf("%s?offset=%d", path, offset)
	_, err = ss.PutRaw(ctx, path, bytes.NewReader(chunk), int64(len(chunk)), nil)
	return err
}

// OpenDownload starts a streamed download of the remote file body.
func (f *File) OpenDownload(ctx context.Context, remoteID any, filename string) (io.ReadCloser, error) {
	ss, err := f.streamingSession()
	if err != nil {
		return nil, err
	}
	path := core.BuildResourcePathWithID(f.GetResourcePath(), remoteID)
	if filename != "" {
		path = fmt.Sprintf("%s?filename=%s", path, url.QueryEscape(filename))
	}
	return ss.StreamGet(ctx, path, nil)
}

// UploadWithContext moves a local file into the catalog: one entry-creation
// request, then sequential 256 KiB positioned writes. Concurrent uploads of
// the same remote name are serialized on the resource lock.
func (f *File) UploadWithContext(ctx context.Context, localPath, remoteName string, metadata core.Params, progress core.TransferProgressFunc) (core.Record, error) {
	if remoteName == "" {
		remoteName = filepath.Base(localPath)
	}
	defer f.Lock(remoteName)()
	return core.UploadFile(ctx, f, localPath, remoteName, metadata, core.DefaultChunkSize, progress)
}

// Upload uploads a local file using the bound REST context.
func (f *File) Upload(localPath, remoteName string, metadata core.Params) (core.Record, error) {
	return f.UploadWithContext(f.Rest.GetCtx(), localPath, remoteName, metadata, nil)
}

// DownloadWithContext streams a remote file to destinationPath. The
// destination checks run before any network I/O: a present file fails with
// DestinationExistsError unless overwrite is set, and the parent directory
// must already exist.
func (f *File) DownloadWithContext(ctx context.Context, remoteID any, filename, destinationPath string, overwrite bool, progress core.TransferProgressFunc) (string, error) {
	return core.DownloadFile(ctx, f, remoteID, filename, destinationPath, overwrite, progress)
}

// Download streams a remote file to destinationPath using the bound REST context.
func (f *File) Download(remoteID any, filename, destinationPath string, overwrite bool) (string, error) {
	return f.DownloadWithContext(f.Rest.GetCtx(), remoteID, filename, destinationPath, overwrite, nil)
}
