package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"futoshiki-results/internal/config"
	"futoshiki-results/internal/dataset"
	"futoshiki-results/internal/logger"
	"futoshiki-results/internal/parser"
	"futoshiki-results/internal/record"
	"futoshiki-results/internal/summary"
)

// runParse is the root command body: parse every log under path, write the
// per-log summaries, and run one reconciliation pass over the dataset.
// Only an unusable input path or an unwritable dataset is fatal; every
// per-file problem is reported and skipped.
func runParse(path string, cfg config.Config) int {
	if info, err := os.Stat(cfg.CSVPath); err == nil && info.IsDir() {
		logger.LogError(fmt.Sprintf("dataset path %s is a directory, need a file path", cfg.CSVPath))
		return 1
	}

	files, err := collectFiles(path)
	if err != nil {
		logger.LogError(err.Error())
		return 1
	}
	if len(files) == 0 {
		logger.LogInfo("no log files to process")
		return 0
	}

	var extracted []record.Record
	for _, file := range files {
		base := filepath.Base(file)
		content, err := os.ReadFile(file)
		if err != nil {
			logger.LogError(fmt.Sprintf("could not read %s, skipping: %v", base, err))
			continue
		}

		records := parser.ParseLog(base, content, logger.LogWarn, logger.LogInfo)
		if len(records) == 0 {
			logger.LogInfo(fmt.Sprintf("%s: no completed runs found", base))
			continue
		}
		logger.LogInfo(fmt.Sprintf("%s: extracted %d run(s)", base, len(records)))
		extracted = append(extracted, records...)

		if out, err := summary.Write(cfg.SummaryDir, base, records, time.Now()); err != nil {
			logger.LogWarn(err.Error())
		} else {
			logger.LogInfo(fmt.Sprintf("%s: summary written to %s", base, out))
		}
	}

	if dir := filepath.Dir(cfg.CSVPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.LogError(fmt.Sprintf("create dataset directory %s: %v", dir, err))
			return 1
		}
	}

	merged := dataset.Merge(dataset.Load(cfg.CSVPath, logger.LogWarn), extracted)
	dataset.Recompute(merged)
	if err := dataset.Write(cfg.CSVPath, merged); err != nil {
		logger.LogError(err.Error())
		return 1
	}

	logger.LogInfo(fmt.Sprintf("dataset %s updated: %d new record(s), %d total", cfg.CSVPath, len(extracted), len(merged)))
	return 0
}

// collectFiles expands a directory argument to its regular files, sorted by
// name. A file argument is returned as-is.
func collectFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("input path %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
