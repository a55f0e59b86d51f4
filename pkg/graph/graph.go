package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Network Serialization API
// =============================================================================

// MarshalNetwork converts a Network to JSON bytes.
// Row order is preserved; a network serializes to the same bytes every time,
// which cache keys and fingerprints rely on.
func MarshalNetwork(n *Network) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNetworkTo(n, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteNetworkFile writes a Network to a JSON file.
// The file is created with 0644 permissions.
func WriteNetworkFile(n *Network, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeNetworkTo(n, f)
}

// WriteNetwork writes a Network as JSON to an io.Writer.
// Use MarshalNetwork for in-memory serialization or WriteNetworkFile for files.
func WriteNetwork(n *Network, w io.Writer) error {
	return writeNetworkTo(n, w)
}

// ReadNetworkFile reads a JSON file and returns the decoded Network.
func ReadNetworkFile(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readNetworkFrom(f)
}

// ReadNetwork decodes a JSON network from an io.Reader.
// Use ReadNetworkFile for files or pass bytes.NewReader for in-memory data.
func ReadNetwork(r io.Reader) (*Network, error) {
	return readNetworkFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeNetworkTo(n *Network, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(n); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readNetworkFrom(r io.Reader) (*Network, error) {
	var n Network
	if err := json.NewDecoder(r).Decode(&n); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &n, nil
}
