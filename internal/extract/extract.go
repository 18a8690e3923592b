// Package extract orchestrates the extraction pipeline: locate the embedded
// archive, walk its resource map, pair dictionary names with File resources,
// then classify, rebase or unpack each sub-file and write it out.
package extract

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"

	"github.com/ossyrian/shockex/internal/config"
	"github.com/ossyrian/shockex/internal/rifx"
)

// Extractor runs the pipeline over one host executable.
type Extractor struct {
	cfg    *config.Config
	fs     afero.Fs
	logger *slog.Logger
}

// New returns an Extractor writing through fs, which is the real filesystem
// in the CLI and a memory filesystem in tests.
func New(cfg *config.Config, fs afero.Fs) *Extractor {
	return &Extractor{
		cfg: cfg,
		fs:  fs,
		logger: slog.With(
			"file", cfg.InputFile,
		),
	}
}

// job is one sub-file's worth of work, fully resolved before fan-out: workers
// share the read-only archive through their owned copies and never touch the
// name books.
type job struct {
	originalPath string
	outName      string
	info         rifx.SubfileInfo
	data         []byte // owned copy, safe for in-place rebasing
}

// Run extracts every movie embedded in host. Container-level failures abort
// the run; per-sub-file failures are logged and skipped.
func (e *Extractor) Run(host []byte) error {
	offset, origin, err := rifx.Locate(host)
	if err != nil {
		return err
	}
	e.logger.Info("archive located",
		"offset", fmt.Sprintf("0x%x", offset),
		"origin", origin.String(),
	)

	archive := host[offset:]
	m, err := rifx.ReadMap(archive, e.logger)
	if err != nil {
		return err
	}

	var names []string
	if m.Dict != nil {
		dictData, err := m.DictBytes(archive)
		if err != nil {
			return err
		}
		if names, err = rifx.ParseDict(dictData, m.Order); err != nil {
			return err
		}
	}

	// Pairing is ordinal: the Nth name belongs to the Nth File resource.
	// Unequal counts make every later pairing suspect, so bail instead of
	// zipping to the shorter list.
	if len(names) != len(m.Files) {
		return fmt.Errorf("dictionary names %d files but the map holds %d File resources", len(names), len(m.Files))
	}

	outDir := e.cfg.OutputDir
	if outDir == "" {
		outDir = DeriveOutputDir(e.cfg.InputFile)
	}
	if !e.cfg.DryRun {
		if err := e.fs.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output directory %s: %w", outDir, err)
		}
	}

	jobs := e.plan(archive, m, origin, names, outDir)

	workers := e.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	p := pool.New().WithErrors().WithMaxGoroutines(workers)
	for _, j := range jobs {
		p.Go(func() error {
			return e.processOne(outDir, j)
		})
	}
	return p.Wait()
}

// plan slices out every sub-file, classifies it and claims its output name.
// Everything that must be serial (the archive walk, name deduplication)
// happens here, before any worker starts.
func (e *Extractor) plan(archive []byte, m *rifx.ResourceMap, origin rifx.Origin, names []string, outDir string) []job {
	taken := make(map[string]bool, len(names))
	jobs := make([]job, 0, len(names))

	for i, file := range m.Files {
		name := names[i]
		logger := e.logger.With(
			"path", name,
			"offset", fmt.Sprintf("0x%x", file.Offset),
		)
		logger.Info("original file path")

		if file.Offset == 0 {
			logger.Warn("skipping empty File resource")
			continue
		}

		data, err := sliceSubfile(archive, m.Order, int(file.Offset))
		if err != nil {
			logger.Warn("skipping sub-file", "error", err)
			continue
		}

		info, err := rifx.Classify(data)
		if err != nil {
			logger.Warn("skipping unclassifiable sub-file", "error", err)
			continue
		}

		outName := uniqueName(e.fs, outDir, outputName(name, origin, info.Type), taken)
		logger.Debug("planned",
			"kind", info.Kind.String(),
			"type", info.Type,
			"output", outName,
			"size", humanize.Bytes(uint64(len(data))),
		)

		jobs = append(jobs, job{
			originalPath: name,
			outName:      outName,
			info:         info,
			data:         data,
		})
	}

	return jobs
}

// sliceSubfile copies a sub-file out of the archive using its self-declared
// size. The map's stored size is advisory only; the truth is the 32-bit size
// field in the sub-file's own chunk header.
func sliceSubfile(archive []byte, order rifx.Order, offset int) ([]byte, error) {
	c := rifx.NewCursor(archive)
	c.SetOrder(order)
	c.Seek(offset + 4)
	declared, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	size := int(declared) + 8
	if offset+size > len(archive) {
		return nil, fmt.Errorf("sub-file at 0x%x declares %d bytes past end of archive", offset, size)
	}

	data := make([]byte, size)
	copy(data, archive[offset:offset+size])
	return data, nil
}

// processOne runs one job's strategy and writes the result. Format failures
// in a single sub-file skip it; only filesystem errors abort the batch.
func (e *Extractor) processOne(outDir string, j job) error {
	logger := e.logger.With(
		"path", j.originalPath,
		"output", j.outName,
	)

	var out []byte
	switch j.info.Kind {
	case rifx.KindRaw, rifx.KindCompressedMovie:
		out = j.data

	case rifx.KindXtra:
		payload, err := rifx.UnpackXtra(j.data, logger)
		if err != nil {
			logger.Warn("skipping undecodable Xtra resource", "error", err)
			return nil
		}
		if payload == nil {
			logger.Info("empty Xtra resource, nothing to write")
			return nil
		}
		out = payload

	default:
		if err := rifx.Rebase(j.data); err != nil {
			logger.Warn("skipping sub-file that failed rebasing", "error", err)
			return nil
		}
		out = j.data
	}

	if e.cfg.DryRun {
		logger.Info("dry run, not writing", "size", humanize.Bytes(uint64(len(out))))
		return nil
	}

	path := filepath.Join(outDir, j.outName)
	if err := afero.WriteFile(e.fs, path, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	logger.Info("extracted", "size", humanize.Bytes(uint64(len(out))))
	return nil
}
