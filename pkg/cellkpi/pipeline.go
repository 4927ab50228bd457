package cellkpi

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/blctm/gigagreen/pkg/cellkpi/kpi"
	"github.com/blctm/gigagreen/pkg/cellkpi/models"
	"github.com/blctm/gigagreen/pkg/cellkpi/normalize"
	"github.com/blctm/gigagreen/pkg/cellkpi/parser"
	"github.com/blctm/gigagreen/pkg/cellkpi/summary"
)

// Pipeline runs read, normalize and extract for one file at a time.
type Pipeline struct {
	extractor *kpi.Extractor
	opts      Options
	logger    *slog.Logger
}

// NewPipeline validates the protocol and returns a pipeline.
func NewPipeline(opts Options) (*Pipeline, error) {
	extractor := kpi.Default()
	if opts.Protocol != nil {
		var err error
		if extractor, err = kpi.NewExtractor(*opts.Protocol); err != nil {
			return nil, err
		}
	}
	return &Pipeline{
		extractor: extractor,
		opts:      opts,
		logger:    opts.logger(),
	}, nil
}

// Protocol returns the KPI protocol the pipeline computes.
func (p *Pipeline) Protocol() kpi.Protocol {
	return p.extractor.Protocol()
}

// NewStore returns an empty store whose header matches this pipeline's summaries.
func (p *Pipeline) NewStore() *summary.Store {
	return summary.NewStore(p.extractor.Columns())
}

// ProcessTable normalizes raw once and extracts its summary.
func (p *Pipeline) ProcessTable(raw *models.RawTable, filename string) (models.Summary, error) {
	table, err := normalize.Normalize(raw)
	if err != nil {
		return models.Summary{}, NewFileError(filename, StageNormalize, err)
	}
	rec, err := p.extractor.Extract(table, filename)
	if err != nil {
		return models.Summary{}, NewFileError(filename, StageExtract, err)
	}
	return rec, nil
}

// ProcessReader reads a workbook from r and extracts its summary.
func (p *Pipeline) ProcessReader(r io.Reader, filename string) (models.Summary, error) {
	f, err := parser.Open(r)
	if err != nil {
		return models.Summary{}, NewFileError(filename, StageRead, err)
	}
	defer f.Close()

	raw, err := parser.ReadRawTable(f, p.opts.Sheet)
	if err != nil {
		return models.Summary{}, NewFileError(filename, StageRead, err)
	}
	if units := parser.ColumnUnits(raw); units != nil {
		p.logger.Debug("Discarding units row",
			slog.String("file", filename),
			slog.Any("units", units))
	} else if len(raw.Rows) > 0 {
		p.logger.Warn("First data row is numeric but is discarded as a header artifact",
			slog.String("file", filename),
			slog.String("sheet", raw.Sheet))
	}

	return p.ProcessTable(raw, filename)
}

// ProcessFile opens path and extracts its summary, keyed by the base file name.
func (p *Pipeline) ProcessFile(path string) (models.Summary, error) {
	name := filepath.Base(path)
	file, err := os.Open(path)
	if err != nil {
		return models.Summary{}, NewFileError(name, StageRead, err)
	}
	defer file.Close()
	return p.ProcessReader(file, name)
}
