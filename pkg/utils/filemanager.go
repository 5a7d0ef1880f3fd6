// =============================================================================
// Catalogue XML to XLSX Converter - File Manager Utility
// =============================================================================
//
// This module provides the file management utilities of the converter:
//   - Opening the input catalogue
//   - Output directory management
//   - Per-run work directories (uuid named)
//   - Filtered stream dumps for debugging filter rules
//   - Run summary logs
//
// All operations go through an afero filesystem: the CLI uses the OS
// filesystem, tests an in-memory one.
//
// WORK DIRECTORY LAYOUT:
//   <work_dir>/
//     <run id>/
//       catalogue.xml        (filtered streams, with keep_filtered)
//       hierarchy.xml
//       ...
//       summary.log          (with write_summary)
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the converter.
type FileManager struct {
	// Fs is the filesystem every operation goes through.
	Fs afero.Fs

	// WorkDir is the parent of the per-run work directories.
	WorkDir string
}

// NewFileManager creates a FileManager. A nil fs means the OS filesystem.
func NewFileManager(fs afero.Fs, workDir string) *FileManager {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileManager{Fs: fs, WorkDir: workDir}
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// =============================================================================
// INPUT AND OUTPUT
// =============================================================================

// OpenInput opens the input catalogue for reading.
func (fm *FileManager) OpenInput(path string) (afero.File, error) {
	f, err := fm.Fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input %s: %w", path, err)
	}
	return f, nil
}

// CheckInput verifies that the input exists and is a regular file.
func (fm *FileManager) CheckInput(path string) error {
	info, err := fm.Fs.Stat(path)
	if err != nil {
		return fmt.Errorf("input %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input %s is a directory", path)
	}
	return nil
}

// EnsureParentDir creates the directory holding an output file.
func (fm *FileManager) EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := fm.Fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists reports whether a path exists.
func (fm *FileManager) FileExists(path string) bool {
	exists, err := afero.Exists(fm.Fs, path)
	return err == nil && exists
}

// =============================================================================
// WORK DIRECTORIES
// =============================================================================

// RunDir creates (if needed) and returns the work directory of a run.
func (fm *FileManager) RunDir(runID string) (string, error) {
	dir := filepath.Join(fm.WorkDir, runID)
	if err := fm.Fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create work directory %s: %w", dir, err)
	}
	return dir, nil
}

// CreateDump creates the dump file of a filtered table stream.
func (fm *FileManager) CreateDump(runID, tableName string) (afero.File, error) {
	dir, err := fm.RunDir(runID)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, tableName+".xml")
	f, err := fm.Fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create dump %s: %w", path, err)
	}
	return f, nil
}

// =============================================================================
// SUMMARY LOG
// =============================================================================

// RunSummary contains the summary of a conversion run.
type RunSummary struct {
	RunID     string
	Input     string
	Output    string
	Format    string
	StartTime time.Time
	EndTime   time.Time
	Tables    []TableSummary
}

// TableSummary describes one produced table.
type TableSummary struct {
	Name    string
	Rows    int
	Columns int

	// Error is empty when the table converted cleanly.
	Error string
}

// WriteSummaryLog writes the summary into the run work directory.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func (fm *FileManager) WriteSummaryLog(summary RunSummary) (string, error) {
	dir, err := fm.RunDir(summary.RunID)
	if err != nil {
		return "", err
	}
	summaryPath := filepath.Join(dir, "summary.log")

	file, err := fm.Fs.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Catalogue XML to XLSX Converter - Run Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:     %s\n"+
		"  Input:      %s\n"+
		"  Output:     %s (%s)\n"+
		"  Start Time: %s\n"+
		"  End Time:   %s\n"+
		"  Duration:   %s\n\n",
		summary.RunID,
		summary.Input,
		summary.Output, summary.Format,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String())

	writer.WriteString("Tables:\n")
	writer.WriteString("--------------------------------------------------------------------------------\n")
	for _, t := range summary.Tables {
		fmt.Fprintf(writer, "  %-14s rows: %-8d columns: %d\n", t.Name, t.Rows, t.Columns)
		if t.Error != "" {
			fmt.Fprintf(writer, "  %-14s error: %s\n", "", t.Error)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return summaryPath, nil
}
