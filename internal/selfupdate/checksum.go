// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ChecksumsAssetName is the release asset listing sha256 sums of the others.
const ChecksumsAssetName = "checksums.txt"

// ErrChecksumMismatch is the sentinel wrapped by ChecksumError.
var ErrChecksumMismatch = errors.New("checksum mismatch")

type (
	// Checksums maps asset file names to lowercase hex SHA256 digests.
	Checksums map[string]string

	// ChecksumError reports a staged artifact whose digest is wrong.
	ChecksumError struct {
		Path     string
		Expected string
		Got      string
	}
)

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum verification failed for %s: expected %s, got %s", e.Path, e.Expected, e.Got)
}

// Unwrap returns ErrChecksumMismatch.
func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// ParseChecksums reads sha256sum output ("<hex>  <file>" per line). Lines
// that do not match are skipped.
func ParseChecksums(r io.Reader) (Checksums, error) {
	sums := make(Checksums)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		hash, file, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "  ")
		file = strings.TrimPrefix(strings.TrimSpace(file), "*")
		if !ok || file == "" || !isHexDigest(hash) {
			continue
		}
		sums[file] = strings.ToLower(hash)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading checksums: %w", err)
	}
	return sums, nil
}

// Verify checks the file at path against the digest listed for asset. An
// asset without an entry is not verified.
func (c Checksums) Verify(path, asset string) error {
	want, ok := c[asset]
	if !ok {
		return nil
	}
	got, err := fileDigest(path)
	if err != nil {
		return err
	}
	if got != want {
		return &ChecksumError{Path: path, Expected: want, Got: got}
	}
	return nil
}

func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }() // read-only file handle

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func isHexDigest(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
