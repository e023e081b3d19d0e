package report

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/SmitBdangar/Morph1x/internal/detect"
	"github.com/SmitBdangar/Morph1x/internal/fsutil"
	"github.com/SmitBdangar/Morph1x/internal/security"
)

// Export formats accepted by Exporter.ExportReport.
const (
	FormatJSON      = "json"
	FormatText      = "text"
	FormatHistogram = "histogram"
)

// ErrNoSpeeds is returned when a histogram export finds no nonzero speed
// observations to plot.
var ErrNoSpeeds = errors.New("no speed observations to plot")

// Exporter writes session reports into a single controlled directory.
// Filenames are sanitized and confined to that directory regardless of
// what callers supply.
type Exporter struct {
	fs  fsutil.FileSystem
	dir string
}

// NewExporter builds an Exporter rooted at dir. A nil filesystem uses the
// real one.
func NewExporter(filesystem fsutil.FileSystem, dir string) (*Exporter, error) {
	if dir == "" {
		return nil, errors.New("export directory not configured")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve export directory: %w", err)
	}
	if filesystem == nil {
		filesystem = fsutil.OSFileSystem{}
	}
	return &Exporter{fs: filesystem, dir: filepath.Clean(abs)}, nil
}

// Dir returns the directory exports are written to.
func (e *Exporter) Dir() string {
	return e.dir
}

// ExportResult describes a file written by ExportReport.
type ExportResult struct {
	File      string `json:"file"`
	Path      string `json:"path"`
	Format    string `json:"format"`
	Session   string `json:"session"`
	SizeBytes int64  `json:"size_bytes"`
}

// ExportEntry is one file in the export directory listing.
type ExportEntry struct {
	Name              string `json:"name"`
	SizeBytes         int64  `json:"size_bytes"`
	ModifiedUnixNanos int64  `json:"modified_unix_nanos"`
}

// ExportReport builds a session report and writes it to the export
// directory in the requested format. An empty filename derives one from
// the session ID; an empty targetUnits keeps the units the session was
// recorded with.
func (e *Exporter) ExportReport(database *sql.DB, sessionID, filename, format, targetUnits string) (*ExportResult, error) {
	var data []byte
	switch format {
	case FormatJSON:
		rpt, err := BuildSessionReport(database, sessionID, targetUnits)
		if err != nil {
			return nil, err
		}
		data, err = json.MarshalIndent(rpt, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal report: %w", err)
		}
		data = append(data, '\n')
	case FormatText:
		rpt, err := BuildSessionReport(database, sessionID, targetUnits)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		rpt.WriteText(&buf)
		data = buf.Bytes()
	case FormatHistogram:
		session, err := detect.GetSession(database, sessionID)
		if err != nil {
			return nil, err
		}
		if targetUnits == "" {
			targetUnits = session.SpeedUnits
		}
		scale, label := SpeedScale(session.MetersPerPixel, targetUnits)

		speeds, err := detect.SessionSpeeds(database, sessionID)
		if err != nil {
			return nil, err
		}
		if len(speeds) == 0 {
			return nil, ErrNoSpeeds
		}
		for i := range speeds {
			speeds[i] *= scale
		}
		data, err = RenderSpeedHistogram(speeds, label)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}

	if filename == "" {
		filename = "session-" + sessionID
	}
	name := security.SanitizeFilename(filename)
	if ext := exportExtension(format); !strings.HasSuffix(strings.ToLower(name), ext) {
		name += ext
	}

	path, err := security.ConfinePath(e.dir, name)
	if err != nil {
		return nil, err
	}
	if err := e.fs.MkdirAll(e.dir, 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	if err := e.fs.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("write export: %w", err)
	}

	return &ExportResult{
		File:      name,
		Path:      path,
		Format:    format,
		Session:   sessionID,
		SizeBytes: int64(len(data)),
	}, nil
}

// List returns the files currently in the export directory, sorted by
// name. A directory that does not exist yet lists as empty.
func (e *Exporter) List() ([]ExportEntry, error) {
	dirEntries, err := e.fs.ReadDir(e.dir)
	if err != nil {
		if !e.fs.Exists(e.dir) {
			return nil, nil
		}
		return nil, fmt.Errorf("list exports: %w", err)
	}

	var entries []ExportEntry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, ExportEntry{
			Name:              de.Name(),
			SizeBytes:         info.Size(),
			ModifiedUnixNanos: info.ModTime().UnixNano(),
		})
	}
	return entries, nil
}

// Read returns a previously exported file's contents and content type.
// The name is confined to the export directory before reading.
func (e *Exporter) Read(filename string) ([]byte, string, error) {
	path, err := security.ConfinePath(e.dir, filename)
	if err != nil {
		return nil, "", err
	}
	data, err := e.fs.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, exportContentType(path), nil
}

func exportExtension(format string) string {
	switch format {
	case FormatText:
		return ".txt"
	case FormatHistogram:
		return ".png"
	default:
		return ".json"
	}
}

func exportContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
