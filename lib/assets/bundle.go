// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

package assets

import (
	"archive/tar"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
)

// maxBundleFileSize caps a single extracted file. A Monaco
// distribution's largest file is a few MB; 256 MB is a hard stop
// against malicious archives.
const maxBundleFileSize = 256 * 1024 * 1024

// ExtractBundle unpacks a .tar.zst Monaco distribution into a cache
// directory addressed by the bundle's BLAKE3 digest and returns that
// directory. Extraction happens once per distinct bundle: when the
// digest directory already exists, it is reused without touching the
// archive again. cacheRoot empty selects the user cache directory.
func ExtractBundle(path, cacheRoot string) (string, error) {
	digest, err := bundleDigest(path)
	if err != nil {
		return "", err
	}

	if cacheRoot == "" {
		userCache, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("assets: resolve cache dir: %w", err)
		}
		cacheRoot = filepath.Join(userCache, "gomonaco")
	}
	bundleDir := filepath.Join(cacheRoot, digest)

	if _, err := os.Stat(bundleDir); err == nil {
		return bundleDir, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("assets: stat %s: %w", bundleDir, err)
	}

	// Extract into a temporary sibling and rename, so that a crashed
	// extraction never leaves a half-populated digest directory.
	staging, err := os.MkdirTemp(cacheRoot, digest+".partial-")
	if err != nil {
		if mkdirErr := os.MkdirAll(cacheRoot, 0o755); mkdirErr != nil {
			return "", fmt.Errorf("assets: create cache root: %w", mkdirErr)
		}
		staging, err = os.MkdirTemp(cacheRoot, digest+".partial-")
		if err != nil {
			return "", fmt.Errorf("assets: create staging dir: %w", err)
		}
	}
	defer os.RemoveAll(staging)

	if err := extractTarZst(path, staging); err != nil {
		return "", err
	}
	if err := os.Rename(staging, bundleDir); err != nil {
		// A concurrent extraction may have won the rename.
		if _, statErr := os.Stat(bundleDir); statErr == nil {
			return bundleDir, nil
		}
		return "", fmt.Errorf("assets: install bundle: %w", err)
	}
	return bundleDir, nil
}

// bundleDigest streams the archive through BLAKE3 and returns the hex
// digest used to address the cache directory.
func bundleDigest(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("assets: open bundle: %w", err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("assets: hash bundle: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// extractTarZst unpacks the archive into destination, rejecting
// entries that would escape it.
func extractTarZst(path, destination string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("assets: open bundle: %w", err)
	}
	defer file.Close()

	decoder, err := zstd.NewReader(file)
	if err != nil {
		return fmt.Errorf("assets: open zstd stream: %w", err)
	}
	defer decoder.Close()

	reader := tar.NewReader(decoder)
	for {
		header, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("assets: read archive: %w", err)
		}

		target, err := secureJoin(destination, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("assets: create dir %s: %w", header.Name, err)
			}
		case tar.TypeReg:
			if header.Size > maxBundleFileSize {
				return fmt.Errorf("assets: entry %s exceeds size limit", header.Name)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("assets: create dir for %s: %w", header.Name, err)
			}
			if err := writeFile(target, reader, header.Size); err != nil {
				return fmt.Errorf("assets: extract %s: %w", header.Name, err)
			}
		default:
			// Symlinks and special files have no place in a web
			// asset bundle; skip them rather than fail the install.
			continue
		}
	}
}

// secureJoin joins an archive entry name to the destination,
// rejecting absolute names and traversal.
func secureJoin(destination, name string) (string, error) {
	cleaned := filepath.Clean(name)
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("assets: archive entry %q escapes bundle directory", name)
	}
	return filepath.Join(destination, cleaned), nil
}

func writeFile(target string, reader io.Reader, size int64) error {
	file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, io.LimitReader(reader, size)); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
