package engine

import (
	"fmt"
	"io"
	"os"
	"time"
)

// backupTimeFormat produces the timestamp suffix of backup file names.
const backupTimeFormat = "20060102_150405"

// backup copies path byte for byte to a timestamp-suffixed sibling,
// preserving the file mode. The copy is a manual recovery artifact: it is
// never cleaned up and never read back by the program.
func backup(path string, now time.Time) (string, error) {
	backupPath := fmt.Sprintf("%s.backup_%s", path, now.Format(backupTimeFormat))

	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}

	dst, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(backupPath)
		return "", fmt.Errorf("copy: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(backupPath)
		return "", fmt.Errorf("close backup: %w", err)
	}

	// Keep the original timestamps so the backup mirrors the source.
	if mtime := info.ModTime(); !mtime.IsZero() {
		_ = os.Chtimes(backupPath, mtime, mtime)
	}

	return backupPath, nil
}
