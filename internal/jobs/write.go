// SPDX-License-Identifier: MIT

package jobs

import (
	"fmt"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
)

// writeArchive durably replaces an archive file. renameio writes to a temp
// file, fsyncs and renames, so readers never observe a truncated artifact.
func writeArchive(path, content string, logger zerolog.Logger) error {
	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logger.Debug().Err(err).Str("path", path).Msg("cleanup pending file")
		}
	}()

	if _, err := pending.Write([]byte(content)); err != nil {
		return fmt.Errorf("write pending file: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", path, err)
	}
	return nil
}
