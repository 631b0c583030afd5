package engine

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
)

// readResponseBody reads at most limit bytes, decompressing gzip or brotli bodies
// the client did not already decode.
func readResponseBody(contentEncoding string, body io.Reader, limit int64) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(body, limit))
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "gzip":
		// Transports that decode transparently may leave the header in place.
		if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
			return raw, nil
		}
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(io.LimitReader(gz, limit))
	case "br":
		data, err := io.ReadAll(io.LimitReader(brotli.NewReader(bytes.NewReader(raw)), limit))
		if err != nil {
			// Already decoded by the transport.
			return raw, nil
		}
		return data, nil
	}
	return raw, nil
}
