package data

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LoadRaw reads a headerless delimited file and names its columns positionally.
// Loading is strict: every record must have exactly len(names) fields.
func LoadRaw(path string, names []string) (*Dataset, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: column names must not be empty", ErrInvalidInput)
	}
	file, err := openFile(path, "raw data file")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))
	// Field counts are checked below so the error can name the expected width.
	reader.FieldsPerRecord = -1

	var rows [][]string
	for line := 1; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidInput, path, err)
		}
		if len(rec) != len(names) {
			return nil, fmt.Errorf("%w: %s line %d has %d fields but %d column names were given",
				ErrColumnCount, path, line, len(rec), len(names))
		}
		rows = append(rows, trimAll(rec))
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s contains no records", ErrInvalidInput, path)
	}
	return New(datasetName(path), names, rows)
}

// ReadCSV reads a delimited file whose first record is the header.
func ReadCSV(path string) (*Dataset, error) {
	file, err := openFile(path, "file")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidInput, path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no header", ErrInvalidInput, path)
	}
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, trimAll(rec))
	}
	return New(datasetName(path), trimAll(records[0]), rows)
}

// WriteCSV writes ds with a header row to dir/filename. The directory must already exist.
func WriteCSV(ds *Dataset, dir, filename string) (string, error) {
	if ds == nil {
		return "", fmt.Errorf("%w: dataset must not be nil", ErrInvalidInput)
	}
	if strings.TrimSpace(filename) == "" {
		return "", fmt.Errorf("%w: file name must not be empty", ErrInvalidInput)
	}
	if err := EnsureDir(dir); err != nil {
		return "", err
	}

	path := filepath.Join(dir, filename)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(ds.columns); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	if err := writer.WriteAll(ds.rows); err != nil {
		return "", fmt.Errorf("write rows: %w", err)
	}
	return path, nil
}

// EnsureDir checks that dir exists and is a directory.
func EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: directory %s does not exist", ErrNotFound, dir)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is an existing file, provide a path to a directory", ErrNotDir, dir)
	}
	return nil
}

func openFile(path, what string) (*os.File, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: the %s %s does not exist", ErrNotFound, what, path)
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

func trimAll(rec []string) []string {
	out := make([]string, len(rec))
	for i, s := range rec {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func datasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
