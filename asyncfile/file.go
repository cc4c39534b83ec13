// Package asyncfile implements the async-file-read contract of spec §6
// (`open_read_only`/`read() -> task<bytes>`) on top of the blocking
// pool, matching the original engine's stated fallback: AsioContext.hpp
// names "sync IO or blocking vulkan calls" as exactly what
// BlockingThreadPool exists for when no native io_uring/IOCP adapter is
// wired in. A production build would instead route through a real
// io_uring/IOCP AsyncFile; this module's contract only requires the
// task<[]byte> shape.
package asyncfile

import (
	"fmt"
	"os"

	"github.com/ngcore/asynccore/blockingpool"
	"github.com/ngcore/asynccore/corerr"
	"github.com/ngcore/asynccore/task"
)

// File is a read-only file handle whose Read calls resume on a blocking
// pool goroutine rather than blocking whatever goroutine issued the
// read.
type File struct {
	pool *blockingpool.Pool
	path string
}

// OpenReadOnly opens path for reading. The open itself runs
// synchronously on the calling goroutine — the original contract scopes
// asynchrony to the read, not the open.
func OpenReadOnly(pool *blockingpool.Pool, path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &corerr.AssetNotFoundError{Handle: path, Cause: err}
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("asyncfile: closing probe handle for %q: %w", path, err)
	}
	return &File{pool: pool, path: path}, nil
}

// Read resumes on a blocking-pool goroutine and returns the file's full
// contents.
func (f *File) Read() task.Sender[[]byte] {
	return task.ThenSender(f.pool.Schedule(), func(struct{}) task.Sender[[]byte] {
		data, err := os.ReadFile(f.path)
		if err != nil {
			return task.Error[[]byte](&corerr.AssetNotFoundError{Handle: f.path, Cause: err})
		}
		return task.Just(data)
	})
}

// Path reports the file's path.
func (f *File) Path() string {
	return f.path
}
