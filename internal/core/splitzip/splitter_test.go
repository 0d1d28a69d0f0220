package splitzip

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/xuri/excelize/v2"

	"turbo-export/internal/core/domain"
)

func makeRows(n int) []domain.Row {
	rows := make([]domain.Row, 0, n)
	for i := 1; i <= n; i++ {
		rows = append(rows, domain.Row{i, fmt.Sprintf("name-%d", i)})
	}
	return rows
}

func readArchive(t *testing.T, data []byte) ([]string, map[string][]byte) {
	t.Helper()
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Output is not a valid zip: %v", err)
	}
	names := make([]string, 0, len(reader.File))
	contents := make(map[string][]byte)
	for _, f := range reader.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Failed to open %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("Failed to read %s: %v", f.Name, err)
		}
		names = append(names, f.Name)
		contents[f.Name] = b
	}
	return names, contents
}

func TestPartCount(t *testing.T) {
	tests := []struct {
		rows, size, expected int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{7, 3, 3},
	}
	for _, tt := range tests {
		if got := PartCount(tt.rows, tt.size); got != tt.expected {
			t.Errorf("PartCount(%d, %d) = %d; expected %d", tt.rows, tt.size, got, tt.expected)
		}
	}
}

func TestExecuteCSVParts(t *testing.T) {
	for _, mode := range []domain.ExportMode{domain.ModeSync, domain.ModeParallel, domain.ModeGlobalPool} {
		t.Run(string(mode), func(t *testing.T) {
			cfg := domain.NewSplitZipConfig(filepath.Join(t.TempDir(), "out.zip"))
			cfg.Mode = mode
			cfg.ChunkSize = 3
			cfg.Workers = 2

			var buf bytes.Buffer
			partFiles, err := NewSplitter(cfg).Write(&buf, []string{"id", "name"}, makeRows(7))
			if err != nil {
				t.Fatalf("Write failed: %v", err)
			}

			expected := []string{"part_1.csv", "part_2.csv", "part_3.csv"}
			if strings.Join(partFiles, ",") != strings.Join(expected, ",") {
				t.Fatalf("Expected parts %v, got %v", expected, partFiles)
			}

			names, contents := readArchive(t, buf.Bytes())
			if strings.Join(names, ",") != strings.Join(expected, ",") {
				t.Errorf("Expected archive entries %v, got %v", expected, names)
			}

			if got := string(contents["part_1.csv"]); got != "id,name\n1,name-1\n2,name-2\n3,name-3\n" {
				t.Errorf("Unexpected part_1.csv: %q", got)
			}
			if got := string(contents["part_3.csv"]); got != "id,name\n7,name-7\n" {
				t.Errorf("Unexpected part_3.csv: %q", got)
			}
		})
	}
}

func TestPartRowCounts(t *testing.T) {
	tests := []struct {
		name      string
		rows      int
		chunkSize int
		expected  []int
	}{
		{name: "250 rows in parts of 100", rows: 250, chunkSize: 100, expected: []int{100, 100, 50}},
		{name: "Exact multiple", rows: 200, chunkSize: 100, expected: []int{100, 100}},
		{name: "Smaller than one part", rows: 5, chunkSize: 100, expected: []int{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.NewSplitZipConfig(filepath.Join(t.TempDir(), "out.zip"))
			cfg.ChunkSize = tt.chunkSize

			var buf bytes.Buffer
			partFiles, err := NewSplitter(cfg).Write(&buf, []string{"id", "name"}, makeRows(tt.rows))
			if err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if len(partFiles) != len(tt.expected) {
				t.Fatalf("Expected %d parts, got %d", len(tt.expected), len(partFiles))
			}

			_, contents := readArchive(t, buf.Bytes())
			for i, want := range tt.expected {
				name := fmt.Sprintf("part_%d.csv", i+1)
				lines := strings.Count(string(contents[name]), "\n")
				// header line plus data rows
				if lines-1 != want {
					t.Errorf("Expected %s to hold %d rows, got %d", name, want, lines-1)
				}
			}
		})
	}
}

func TestExecuteWithoutHeaders(t *testing.T) {
	cfg := domain.NewSplitZipConfig("unused.zip")
	cfg.IncludeHeaders = false
	cfg.ChunkSize = 10

	var buf bytes.Buffer
	if _, err := NewSplitter(cfg).Write(&buf, []string{"id", "name"}, makeRows(2)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	_, contents := readArchive(t, buf.Bytes())
	if got := string(contents["part_1.csv"]); got != "1,name-1\n2,name-2\n" {
		t.Errorf("Expected no header row, got %q", got)
	}
}

func TestExecuteEmptyInputYieldsOnePart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.zip")
	cfg := domain.NewSplitZipConfig(path)
	cfg.ChunkSize = 5

	result, err := NewSplitter(cfg).Execute([]string{"h"}, nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.TotalParts != 1 || result.TotalRows != 0 {
		t.Errorf("Expected 1 part and 0 rows, got %d parts and %d rows", result.TotalParts, result.TotalRows)
	}
	if result.OutputPath != path {
		t.Errorf("Expected output path %s, got %s", path, result.OutputPath)
	}
	if len(result.PartFiles) != 1 || result.PartFiles[0] != "part_1.csv" {
		t.Errorf("Expected [part_1.csv], got %v", result.PartFiles)
	}
}

func TestExecuteRequiresSplitAndZip(t *testing.T) {
	cfg := domain.NewSplitZipConfig(filepath.Join(t.TempDir(), "out.zip"))
	cfg.Split = false

	_, err := NewSplitter(cfg).Execute(nil, makeRows(1))
	if !errors.Is(err, domain.ErrSplitZipDisabled) {
		t.Errorf("Expected %v, got %v", domain.ErrSplitZipDisabled, err)
	}
}

func TestExecuteUnwritablePath(t *testing.T) {
	cfg := domain.NewSplitZipConfig(filepath.Join(t.TempDir(), "missing", "out.zip"))
	if _, err := NewSplitter(cfg).Execute(nil, makeRows(1)); err == nil {
		t.Error("Expected error for unwritable output path")
	}
}

func TestXLSXPartsAreStandaloneWorkbooks(t *testing.T) {
	for _, mode := range []domain.ExportMode{domain.ModeSync, domain.ModeParallel} {
		t.Run(string(mode), func(t *testing.T) {
			cfg := domain.NewSplitZipConfig("unused.zip")
			cfg.Format = domain.FormatXLSX
			cfg.Mode = mode
			cfg.ChunkSize = 2

			var buf bytes.Buffer
			partFiles, err := NewSplitter(cfg).Write(&buf, []string{"id", "name"}, makeRows(5))
			if err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if len(partFiles) != 3 || partFiles[2] != "part_3.xlsx" {
				t.Fatalf("Unexpected part files: %v", partFiles)
			}

			_, contents := readArchive(t, buf.Bytes())
			for i, name := range partFiles {
				f, err := excelize.OpenReader(bytes.NewReader(contents[name]))
				if err != nil {
					t.Fatalf("%s is not a readable workbook: %v", name, err)
				}
				rows, err := f.GetRows("Sheet1")
				f.Close()
				if err != nil {
					t.Fatalf("GetRows on %s failed: %v", name, err)
				}
				if len(rows) == 0 || strings.Join(rows[0], ",") != "id,name" {
					t.Errorf("%s: expected header row first, got %v", name, rows)
				}
				firstID := fmt.Sprint(i*2 + 1)
				if len(rows) < 2 || rows[1][0] != firstID {
					t.Errorf("%s: expected first data id %s, got %v", name, firstID, rows)
				}
			}
		})
	}
}

func TestParallelPartsMatchSync(t *testing.T) {
	rows := makeRows(103)

	syncCfg := domain.NewSplitZipConfig("unused.zip")
	syncCfg.ChunkSize = 10
	var syncBuf bytes.Buffer
	if _, err := NewSplitter(syncCfg).Write(&syncBuf, []string{"id", "name"}, rows); err != nil {
		t.Fatalf("sync Write failed: %v", err)
	}

	parCfg := syncCfg
	parCfg.Mode = domain.ModeParallel
	parCfg.Workers = 8
	var parBuf bytes.Buffer
	if _, err := NewSplitter(parCfg).Write(&parBuf, []string{"id", "name"}, rows); err != nil {
		t.Fatalf("parallel Write failed: %v", err)
	}

	syncNames, syncContents := readArchive(t, syncBuf.Bytes())
	parNames, parContents := readArchive(t, parBuf.Bytes())
	if strings.Join(syncNames, ",") != strings.Join(parNames, ",") {
		t.Fatalf("Entry order differs: %v vs %v", syncNames, parNames)
	}
	for _, name := range syncNames {
		if !bytes.Equal(syncContents[name], parContents[name]) {
			t.Errorf("%s differs between sync and parallel", name)
		}
	}
}
