// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

// Package fsutil provides filesystem helpers for the zplay data directory.
// Data files are per-user (0600 files, 0700 dirs): the directory holds
// persisted exercise state and REPL history, neither of which should be
// readable by other users.
package fsutil

import (
	"os"
)

// DataDirPerm is the permission mode for data directories.
const DataDirPerm os.FileMode = 0700

// DataFilePerm is the permission mode for data files.
const DataFilePerm os.FileMode = 0600

// MkdirAll creates a directory and all parents with data-dir permissions.
// Unlike os.MkdirAll, this explicitly sets permissions after creation to
// bypass umask restrictions.
func MkdirAll(path string) error {
	if err := os.MkdirAll(path, DataDirPerm); err != nil {
		return err
	}
	return os.Chmod(path, DataDirPerm)
}

// WriteFile writes data to a file with data-file permissions.
// Unlike os.WriteFile, this explicitly sets permissions after creation to
// bypass umask restrictions.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, DataFilePerm); err != nil {
		return err
	}
	return os.Chmod(path, DataFilePerm)
}
