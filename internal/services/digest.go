package services

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"sort"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/crypto/blake2b"
)

const (
	DefaultBlockSize = 65536

	DigestSHA256  = "sha256"
	DigestSHA512  = "sha512"
	DigestBLAKE2b = "blake2b"
)

type HashOptions struct {
	BlockSize int    `json:"blockSize"`
	Digest    string `json:"digest"`
}

func DefaultHashOptions() HashOptions {
	return HashOptions{BlockSize: DefaultBlockSize, Digest: DigestSHA256}
}

var digests = map[string]func() hash.Hash{
	DigestSHA256: sha256.New,
	DigestSHA512: sha512.New,
	DigestBLAKE2b: func() hash.Hash {
		// New256 only fails for keys longer than 64 bytes.
		h, _ := blake2b.New256(nil)
		return h
	},
}

// Digests lists the recognised digest identifiers.
func Digests() []string {
	names := make([]string, 0, len(digests))
	for name := range digests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Hasher computes full-content digests by streaming fixed-size blocks.
type Hasher struct {
	digest    string
	blockSize int
	newHash   func() hash.Hash
}

func NewHasher(options HashOptions) (*Hasher, error) {
	if options.Digest == "" {
		options.Digest = DigestSHA256
	}
	if options.BlockSize == 0 {
		options.BlockSize = DefaultBlockSize
	}
	if options.BlockSize < 0 {
		return nil, fmt.Errorf("%d: %w", options.BlockSize, ErrInvalidBlockSize)
	}
	newHash, ok := digests[options.Digest]
	if !ok {
		return nil, fmt.Errorf("%q: %w", options.Digest, ErrUnknownDigest)
	}
	return &Hasher{digest: options.Digest, blockSize: options.BlockSize, newHash: newHash}, nil
}

func (hasher *Hasher) Digest() string {
	return hasher.digest
}

func (hasher *Hasher) BlockSize() int {
	return hasher.blockSize
}

func (hasher *Hasher) HashFile(fsys billy.Filesystem, path string) (string, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return hasher.HashReader(file)
}

func (hasher *Hasher) HashReader(reader io.Reader) (string, error) {
	h := hasher.newHash()
	buf := make([]byte, hasher.blockSize)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
