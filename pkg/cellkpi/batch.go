package cellkpi

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/blctm/gigagreen/pkg/cellkpi/models"
	"github.com/blctm/gigagreen/pkg/cellkpi/summary"
)

// Source is one named input of a batch.
type Source struct {
	// Name is the file name the cell id is derived from.
	Name string
	// Open returns the workbook content. It is called once, when the
	// source's turn comes.
	Open func() (io.ReadCloser, error)
}

// FileSource returns a source reading the file at path.
func FileSource(path string) Source {
	return Source{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// BytesSource returns a source over in-memory workbook content.
func BytesSource(name string, data []byte) Source {
	return Source{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// FileOutcome is the result of one file: either a summary or an error.
type FileOutcome struct {
	File    string
	Summary *models.Summary
	Err     *FileError
}

// BatchReport lists the outcome of each attempted file in processing order.
type BatchReport struct {
	Outcomes []FileOutcome
}

// Processed returns the summaries appended to the store.
func (r *BatchReport) Processed() []models.Summary {
	var out []models.Summary
	for _, o := range r.Outcomes {
		if o.Summary != nil {
			out = append(out, *o.Summary)
		}
	}
	return out
}

// Failures returns the errors of files that contributed no record.
func (r *BatchReport) Failures() []*FileError {
	var out []*FileError
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o.Err)
		}
	}
	return out
}

// RunBatch processes sources one after another and appends each successful
// summary to store. A file that fails with a data error is recorded in the
// report and the batch moves on. Any other error stops the batch and is
// returned together with the report so far, unless Options.KeepGoing is set.
func (p *Pipeline) RunBatch(sources []Source, store *summary.Store) (*BatchReport, error) {
	report := &BatchReport{}
	for _, src := range sources {
		rec, err := p.runOne(src)
		if err == nil {
			if err = store.Append(rec); err != nil {
				err = NewFileError(src.Name, StageAccumulate, err)
			}
		}
		if err != nil {
			fe := asFileError(src.Name, err)
			report.Outcomes = append(report.Outcomes, FileOutcome{File: src.Name, Err: fe})
			if !IsDataError(fe) && !p.opts.KeepGoing {
				p.logger.Error("Batch aborted",
					slog.String("file", fe.File),
					slog.String("stage", string(fe.Stage)),
					slog.String("error", fe.Err.Error()))
				return report, fe
			}
			p.logger.Warn("File skipped",
				slog.String("file", fe.File),
				slog.String("stage", string(fe.Stage)),
				slog.String("error", fe.Err.Error()))
			continue
		}

		report.Outcomes = append(report.Outcomes, FileOutcome{File: src.Name, Summary: &rec})
		p.logger.Info("File processed",
			slog.String("file", src.Name),
			slog.String("cell_id", rec.CellID),
			slog.String("anodo", rec.Anodo),
			slog.Int("records", store.Len()))
	}
	return report, nil
}

func (p *Pipeline) runOne(src Source) (models.Summary, error) {
	rc, err := src.Open()
	if err != nil {
		return models.Summary{}, NewFileError(src.Name, StageRead, err)
	}
	defer rc.Close()
	return p.ProcessReader(rc, src.Name)
}

func asFileError(name string, err error) *FileError {
	if fe, ok := err.(*FileError); ok {
		return fe
	}
	return NewFileError(name, StageRead, err)
}
