package placer

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/gajzzs/sampleload/internal/crypto"
)

// sourceReader remembers read errors so a failed copy can be blamed on the
// right side.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		s.err = err
	}
	return n, err
}

// fileDigest hashes the copied file for verification.
var fileDigest = crypto.FileDigest

// copySample streams src over dst and returns the bytes written. The returned
// kind is ErrSourceRead or ErrDestinationWrite when err is non-nil.
//
// The source is opened before dst is touched, so a missing source never
// truncates an existing destination.
func copySample(src, dst string, verify bool) (written int64, kind error, err error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, ErrSourceRead, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, ErrSourceRead, err
	}
	if info.IsDir() {
		return 0, ErrSourceRead, fmt.Errorf("%s is a directory", src)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, ErrDestinationWrite, err
	}
	defer out.Close()

	srcHash := crypto.NewHash()
	reader := &sourceReader{r: io.TeeReader(in, srcHash)}
	written, err = io.Copy(out, reader)
	if err != nil {
		if reader.err != nil {
			return written, ErrSourceRead, reader.err
		}
		return written, ErrDestinationWrite, err
	}
	if err := out.Close(); err != nil {
		return written, ErrDestinationWrite, err
	}

	if !verify {
		return written, nil, nil
	}

	if written != info.Size() {
		_ = os.Remove(dst)
		return written, ErrDestinationWrite, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written)
	}
	dstDigest, err := fileDigest(dst)
	if err != nil {
		return written, ErrDestinationWrite, fmt.Errorf("failed to re-read destination: %w", err)
	}
	if hex.EncodeToString(srcHash.Sum(nil)) != dstDigest {
		_ = os.Remove(dst)
		return written, ErrDestinationWrite, fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}
	return written, nil, nil
}
