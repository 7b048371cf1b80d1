package applications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"

	"visaserbia/internal/core"
)

// Document payloads are base64-encoded file bodies, which compress very
// well. SQL backends store the document list as one brotli-compressed JSON
// blob per application.

func encodeDocuments(docs []core.DocumentInfo) ([]byte, error) {
	if docs == nil {
		docs = []core.DocumentInfo{}
	}
	raw, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal documents: %w", err)
	}

	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, fmt.Errorf("failed to compress documents: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress documents: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeDocuments(data []byte) ([]core.DocumentInfo, error) {
	if len(data) == 0 {
		return []core.DocumentInfo{}, nil
	}

	raw, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress documents: %w", err)
	}

	var docs []core.DocumentInfo
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal documents: %w", err)
	}
	if docs == nil {
		docs = []core.DocumentInfo{}
	}
	return docs, nil
}
