package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Fingerprinter hashes client addresses with a keyed BLAKE2b so logs can correlate
// visitors without holding their IP.
type Fingerprinter struct {
	key []byte
}

// NewFingerprinter uses key, or a random per-process key when key is empty.
func NewFingerprinter(key string) (*Fingerprinter, error) {
	k := []byte(key)
	if len(k) == 0 {
		k = make([]byte, 32)
		if _, err := rand.Read(k); err != nil {
			return nil, fmt.Errorf("generate fingerprint key: %w", err)
		}
	}
	if len(k) > blake2b.Size {
		sum := blake2b.Sum256(k)
		k = sum[:]
	}
	return &Fingerprinter{key: k}, nil
}

// Of returns the fingerprint of the client that sent r.
func (f *Fingerprinter) Of(r *http.Request) string {
	return f.Hash(clientIP(r))
}

func (f *Fingerprinter) Hash(ip string) string {
	h, err := blake2b.New256(f.key)
	if err != nil {
		return ""
	}
	h.Write([]byte(ip))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
