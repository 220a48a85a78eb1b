package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/wav"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tazaudio/internal/transport"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"
)

func playbackError(code transport.ErrorCode, err error) *transport.PlaybackError {
	return &transport.PlaybackError{Code: code, Cause: err}
}

// open loads and decodes the audio at uri.
func (c *Connector) open(ctx context.Context, uri string) (beep.StreamSeekCloser, beep.Format, error) {
	var (
		rsc io.ReadSeekCloser
		ext string
		err error
	)
	u, perr := url.Parse(uri)
	switch {
	case perr == nil && (u.Scheme == "http" || u.Scheme == "https"):
		ext = strings.ToLower(path.Ext(u.Path))
		rsc, err = c.fetch(ctx, uri)
	case perr == nil && u.Scheme == "file":
		ext = strings.ToLower(filepath.Ext(u.Path))
		rsc, err = openFile(u.Path)
	default:
		ext = strings.ToLower(filepath.Ext(uri))
		rsc, err = openFile(uri)
	}
	if err != nil {
		return nil, beep.Format{}, err
	}

	streamer, format, err := decode(ext, rsc)
	if err != nil {
		rsc.Close()
		return nil, beep.Format{}, err
	}
	return streamer, format, nil
}

func openFile(p string) (io.ReadSeekCloser, error) {
	f, err := os.Open(p)
	switch {
	case err == nil:
		return f, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, playbackError(transport.ErrorIOFileNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return nil, playbackError(transport.ErrorIONoPermission, err)
	default:
		return nil, playbackError(transport.ErrorIOUnspecified, err)
	}
}

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

// fetch downloads uri into memory so that it can be seeked.
func (c *Connector) fetch(ctx context.Context, uri string) (io.ReadSeekCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, playbackError(transport.ErrorIOUnspecified, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &transport.PlaybackError{
			Code:    transport.ErrorIOBadHTTPStatus,
			Message: fmt.Sprintf("GET %s: %s", uri, resp.Status),
		}
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !isAudioContentType(ct) {
		return nil, &transport.PlaybackError{
			Code:    transport.ErrorIOInvalidHTTPContentType,
			Message: fmt.Sprintf("GET %s: content type %s", uri, ct),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}
	c.log.WithFields(logrus.Fields{"uri": uri, "size": humanize.IBytes(uint64(len(data)))}).
		Debug("fetched audio")
	return memFile{bytes.NewReader(data)}, nil
}

func isAudioContentType(ct string) bool {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt, "audio/") || mt == "application/octet-stream"
}

func networkError(err error) *transport.PlaybackError {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return playbackError(transport.ErrorIONetworkConnectionTimeout, err)
	}
	return playbackError(transport.ErrorIONetworkConnectionFailed, err)
}

func decode(ext string, rsc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)
	switch ext {
	case extMP3:
		streamer, format, err = decodeMP3(rsc)
	case extFLAC:
		// Skip ID3v2 tag if present (some taggers add it to FLAC files)
		if err := skipID3v2(rsc); err != nil {
			return nil, beep.Format{}, playbackError(transport.ErrorIOUnspecified, err)
		}
		streamer, format, err = flac.Decode(rsc)
	case extWAV:
		streamer, format, err = wav.Decode(rsc)
	default:
		return nil, beep.Format{}, &transport.PlaybackError{
			Code:    transport.ErrorDecodingFormatUnsupported,
			Message: fmt.Sprintf("unsupported format %q", ext),
		}
	}
	if err != nil {
		return nil, beep.Format{}, playbackError(transport.ErrorDecodingFailed, err)
	}
	return streamer, format, nil
}

// skipID3v2 skips an ID3v2 tag if present at the beginning of the stream.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}
	if n < 10 || string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// ID3v2 size is a syncsafe integer: 7 bits per byte
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}
