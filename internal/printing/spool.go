package printing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Job is one submission of rasterized pages to a device.
type Job struct {
	ID     string
	Device string
	Copies int
	Pages  [][]byte
}

// Printer is the sink that receives print jobs.
type Printer interface {
	Send(ctx context.Context, job Job) error
}

// SpoolPrinter drops PNG pages into a per-device spool directory picked up by
// the print server.
type SpoolPrinter struct {
	dir string
}

// NewSpoolPrinter returns a printer spooling below dir.
func NewSpoolPrinter(dir string) *SpoolPrinter {
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Join(os.TempDir(), "odyssey-spool")
	}
	return &SpoolPrinter{dir: dir}
}

// Dir returns the spool root.
func (p *SpoolPrinter) Dir() string { return p.dir }

// Send writes every page of every copy as <job>-c<copy>-p<page>.png.
func (p *SpoolPrinter) Send(ctx context.Context, job Job) error {
	device := deviceDir(job.Device)
	if device == "" {
		return ErrNoDevice
	}
	dir := filepath.Join(p.dir, device)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("printing: spool dir: %w", err)
	}
	copies := max(job.Copies, 1)
	for c := 1; c <= copies; c++ {
		for i, page := range job.Pages {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := fmt.Sprintf("%s-c%02d-p%03d.png", job.ID, c, i+1)
			if err := os.WriteFile(filepath.Join(dir, name), page, 0o644); err != nil {
				return fmt.Errorf("printing: spool %s: %w", name, err)
			}
		}
	}
	return nil
}

// deviceDir keeps device names from escaping the spool root.
func deviceDir(device string) string {
	device = strings.TrimSpace(device)
	device = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(device)
	return device
}
