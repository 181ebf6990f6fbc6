package fmc

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/yardops-cli/internal/fetcher"
	"github.com/sells-group/yardops-cli/internal/model"
)

// FileProvider loads FMC rows from exported workbooks on disk, for
// offline runs and replays. It looks for <site>.xlsx then <site>.csv in
// the export directory; a site with neither file has no rows.
type FileProvider struct {
	dir string
}

// NewFileProvider creates a provider rooted at the export directory.
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

// Records loads the site's exported dataset.
func (p *FileProvider) Records(_ context.Context, site string) ([]model.FMCRecord, error) {
	if xlsxPath := filepath.Join(p.dir, site+".xlsx"); exists(xlsxPath) {
		header, rows, err := fetcher.ReadXLSX(xlsxPath)
		if err != nil {
			return nil, eris.Wrapf(err, "fmc: read export for %s", site)
		}
		return recordsFromTable(header, rows), nil
	}

	csvPath := filepath.Join(p.dir, site+".csv")
	f, err := os.Open(csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Info("fmc: no export file for site", zap.String("site", site))
			return nil, nil
		}
		return nil, eris.Wrapf(err, "fmc: open export for %s", site)
	}
	defer f.Close() //nolint:errcheck

	header, rows, err := fetcher.ReadCSV(f)
	if err != nil {
		return nil, eris.Wrapf(err, "fmc: read export for %s", site)
	}
	return recordsFromTable(header, rows), nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
