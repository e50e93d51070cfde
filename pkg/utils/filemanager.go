// =============================================================================
// HS Code Reconciler - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the reconciler:
//   - Output directory management
//   - Output file naming
//   - Atomic output writes (temp file + rename)
//   - Input discovery for directory batches
//   - Run summary logs
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles output files for one run.
type FileManager struct {
	// OutputDir is the directory where output files are placed.
	OutputDir string

	// NameFormat is the output file name format, without extension.
	// See GenerateOutputFileName for placeholders.
	NameFormat string
}

// NewFileManager creates a new FileManager.
func NewFileManager(outputDir, nameFormat string) *FileManager {
	if nameFormat == "" {
		nameFormat = "{kind}_{timestamp}"
	}
	return &FileManager{
		OutputDir:  outputDir,
		NameFormat: nameFormat,
	}
}

// EnsureDirectories creates the output directory if it doesn't exist.
func (fm *FileManager) EnsureDirectories() error {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// OutputPath returns a new output path for the given kind and extension.
func (fm *FileManager) OutputPath(kind, ext string) string {
	name := GenerateOutputFileName(fm.NameFormat, ext, map[string]string{"kind": kind})
	return filepath.Join(fm.OutputDir, name)
}

// WriteOutput creates a new output file and fills it with write.
//
// PARAMETERS:
//   - kind: Substituted for {kind} in the name format.
//   - ext: The file extension, with or without the leading dot.
//   - write: Writes the file contents.
//
// RETURNS:
//   - The path of the written file.
//   - An error if the file cannot be written. No partial file is left behind.
func (fm *FileManager) WriteOutput(kind, ext string, write func(io.Writer) error) (string, error) {
	path := fm.OutputPath(kind, ext)

	tmp, err := os.CreateTemp(fm.OutputDir, ".partial-*")
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	tmpPath := tmp.Name()

	buffered := bufio.NewWriter(tmp)
	if err := write(buffered); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", err
	}
	if err := buffered.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to flush output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close output file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move output file into place: %w", err)
	}
	return path, nil
}

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateOutputFileName generates an output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {uuid}      - A random UUID
//     {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Current date (YYYYMMDD)
//     {time}      - Current time (HHMMSS)
//     {<key>}     - Any key in params
//   - ext: The extension to ensure, e.g. "xlsx" or ".csv". Empty adds none.
//   - params: A map of placeholder values.
//
// EXAMPLE:
//
//	format: "{kind}_{timestamp}"
//	ext:    "xlsx"
//	params: {"kind": "hs-code-analysis"}
//	output: "hs-code-analysis_20240115_143022.xlsx"
func GenerateOutputFileName(format, ext string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
			result += ext
		}
	}
	return result
}

// =============================================================================
// INPUT DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the files directly inside dir whose extension is
// one of extensions (case-insensitive), sorted by name. Hidden files and Excel
// lock files ("~$...") are skipped.
func DiscoverInputFiles(dir string, extensions []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if slices.Contains(extensions, strings.ToLower(filepath.Ext(name))) {
			files = append(files, filepath.Join(dir, name))
		}
	}

	slices.Sort(files)
	return files, nil
}

// =============================================================================
// RUN SUMMARY LOG
// =============================================================================

// RunSummary contains information about one or more processed runs.
type RunSummary struct {
	StartTime  time.Time
	EndTime    time.Time
	Processed  []ProcessedRunInfo
	FailedRuns []FailedRunInfo
	TotalLines int
	TotalKeys  int
	Warnings   int
}

// ProcessedRunInfo describes a successful run.
type ProcessedRunInfo struct {
	Inputs      []string
	OutputFiles []string
	Lines       int
	Keys        int
	ProcessTime time.Duration
}

// FailedRunInfo describes a failed run.
type FailedRunInfo struct {
	Inputs       []string
	ErrorMessage string
}

// WriteSummaryLog writes a processing summary to a text file in outputDir.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	timestamp := time.Now().Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("processing_summary_%s.txt", timestamp))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	rule := strings.Repeat("=", 80)
	thin := strings.Repeat("-", 80)

	fmt.Fprintf(writer, "HS Code Reconciler - Processing Summary\n%s\n\n", rule)
	fmt.Fprintf(writer, "Run Information:\n"+
		"  Start Time:  %s\n"+
		"  End Time:    %s\n"+
		"  Duration:    %s\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String())
	fmt.Fprintf(writer, "Statistics:\n"+
		"  Successful:  %d\n"+
		"  Failed:      %d\n"+
		"  Lines:       %d\n"+
		"  HS Codes:    %d\n"+
		"  Warnings:    %d\n\n",
		len(summary.Processed),
		len(summary.FailedRuns),
		summary.TotalLines,
		summary.TotalKeys,
		summary.Warnings)

	if len(summary.Processed) > 0 {
		fmt.Fprintf(writer, "Successful Runs:\n%s\n", thin)
		for _, p := range summary.Processed {
			fmt.Fprintf(writer, "  Inputs:       %s\n", strings.Join(p.Inputs, ", "))
			for _, out := range p.OutputFiles {
				fmt.Fprintf(writer, "  Output:       %s\n", out)
			}
			fmt.Fprintf(writer, "  Lines:        %d\n", p.Lines)
			fmt.Fprintf(writer, "  HS Codes:     %d\n", p.Keys)
			fmt.Fprintf(writer, "  Process Time: %s\n\n", p.ProcessTime.String())
		}
	}

	if len(summary.FailedRuns) > 0 {
		fmt.Fprintf(writer, "Failed Runs:\n%s\n", thin)
		for _, f := range summary.FailedRuns {
			fmt.Fprintf(writer, "  Inputs: %s\n", strings.Join(f.Inputs, ", "))
			fmt.Fprintf(writer, "  Error:  %s\n\n", f.ErrorMessage)
		}
	}

	fmt.Fprintf(writer, "%s\nEnd of Summary\n", rule)

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
