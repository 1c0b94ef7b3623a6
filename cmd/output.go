// SPDX-License-Identifier: MIT
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"earshot/internal/pipeline"
	"earshot/internal/tui"
)

// outputFlags select how a finished analysis is emitted.
type outputFlags struct {
	json   bool
	dir    string
	browse bool
}

// writeJSON encodes v with two-space indentation.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// reportPath names the JSON report for source inside dir.
func reportPath(dir, source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return filepath.Join(dir, base+".analysis.json")
}

func saveJSON(path string, v any) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return writeJSON(f, v)
}

// emit writes a to the destinations picked by out. With no flags set the
// summary is printed.
func emit(w io.Writer, a *pipeline.Analysis, out outputFlags) error {
	if out.dir != "" {
		path := reportPath(out.dir, a.Source)
		if err := saveJSON(path, a); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		logger.Infof("report written to %s", path)
	}

	switch {
	case out.browse:
		return tui.StartReportUI(a)
	case out.json:
		return writeJSON(w, a)
	default:
		_, err := fmt.Fprintln(w, tui.RenderSummary(a))
		return err
	}
}
