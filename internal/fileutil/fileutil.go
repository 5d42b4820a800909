// Package fileutil holds file-system constants shared across patchkit packages.
package fileutil

import "os"

// OwnerReadWrite is the file permission mode for written listings, which
// may contain proprietary program code (owner read/write only).
const OwnerReadWrite os.FileMode = 0o600
