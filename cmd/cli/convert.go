package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/xtbpp/pkg/csv"
	"github.com/yurifrl/xtbpp/pkg/models"
	"github.com/yurifrl/xtbpp/pkg/service"
)

// expandInputs resolves a glob into workbook paths. Directories contribute
// the workbooks directly inside them.
func expandInputs(pattern string, logger *log.Logger) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files found matching pattern %s", pattern)
	}

	var inputs []string
	for _, match := range matches {
		fileInfo, err := os.Stat(match)
		if err != nil {
			logger.Warn("failed to stat file", "error", err, "file", match)
			continue
		}
		if !fileInfo.IsDir() {
			inputs = append(inputs, match)
			continue
		}

		entries, err := os.ReadDir(match)
		if err != nil {
			logger.Warn("failed to read directory", "error", err, "dir", match)
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && service.IsWorkbook(e.Name()) {
				inputs = append(inputs, filepath.Join(match, e.Name()))
			}
		}
	}
	return inputs, nil
}

// convertToWriter converts every input and writes the records of all of them
// as one CSV document.
func convertToWriter(processor *service.Processor, inputs []string, filter csv.FilterFunc, w io.Writer, logger *log.Logger) error {
	var records []models.Record
	for _, input := range inputs {
		out, err := processor.Preview(service.Job{Input: input, Filter: filter})
		if err != nil {
			logger.Warn("failed to process file", "error", err, "file", input)
			continue
		}
		records = append(records, out.Records...)
	}
	return processor.Write(w, records)
}
