package harvest

import (
	"bytes"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"
)

// JSON encodes the payload without compression.
func (p *Payload) JSON() ([]byte, error) {
	return sonic.Marshal(p)
}

// Encode returns the payload as gzip-compressed JSON.
func (p *Payload) Encode() ([]byte, error) {
	data, err := sonic.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode.
func Decode(data []byte) (*Payload, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open payload: %w", err)
	}
	defer gz.Close()

	raw, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}

	var p Payload
	if err := sonic.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &p, nil
}
