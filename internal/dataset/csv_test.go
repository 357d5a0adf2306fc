package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    []column
		wantErr bool
	}{
		{"canonical", "time,position,length", []column{colTime, colPosition, colLength}, false},
		{"reordered", "length,time,position", []column{colLength, colTime, colPosition}, false},
		{"case insensitive", "Time,POSITION,Length", []column{colTime, colPosition, colLength}, false},
		{"length synonym", "time,position,currentqueuelength", []column{colTime, colPosition, colLength}, false},
		{"snake synonym", "time,position,current_queue_length", []column{colTime, colPosition, colLength}, false},
		{"padded", "time, position, length", []column{colTime, colPosition, colLength}, false},
		{"unknown column", "time,position,depth", nil, true},
		{"duplicate", "time,time,length", nil, true},
		{"data row", "1647355020000,300,400", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHeader(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
			if err != nil {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d columns, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("column %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestReadRun(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.csv", `time,position,length
1647355020000,300,400
1647355080000,299,400
1647355140000,298,399
`)

	run, skipped, err := readRun(path, false)
	if err != nil {
		t.Fatalf("readRun failed: %v", err)
	}
	if skipped != 0 {
		t.Errorf("expected 0 skipped, got %d", skipped)
	}
	if len(run.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(run.Points))
	}
	if run.Points[0].Position != 300 {
		t.Errorf("expected position 300, got %d", run.Points[0].Position)
	}
	if run.Points[2].Length != 399 {
		t.Errorf("expected length 399, got %d", run.Points[2].Length)
	}
}

func TestReadRunReorderedColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.csv", `position,length,time
5,10,1000
4,10,2000
`)

	run, _, err := readRun(path, false)
	if err != nil {
		t.Fatalf("readRun failed: %v", err)
	}
	if run.Points[0].Time != 1000 || run.Points[0].Position != 5 || run.Points[0].Length != 10 {
		t.Errorf("columns mapped wrong: %+v", run.Points[0])
	}
}

func TestReadRunStrictFailsOnBadRow(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.csv", `time,position,length
1000,5,10
2000,oops,10
3000,4,10
`)

	_, _, err := readRun(path, false)
	if err == nil {
		t.Fatal("expected parse error")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Line != 3 {
		t.Errorf("expected error on line 3, got %d", parseErr.Line)
	}
}

func TestReadRunStrictFailsOnColumnCount(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.csv", `time,position,length
1000,5
`)

	_, _, err := readRun(path, false)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
}

func TestReadRunLenientSkips(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.csv", `time,position,length
1000,5,10
2000,oops,10
3000,4,10
`)

	run, skipped, err := readRun(path, true)
	if err != nil {
		t.Fatalf("lenient read failed: %v", err)
	}
	if skipped != 1 {
		t.Errorf("expected 1 skipped row, got %d", skipped)
	}
	if len(run.Points) != 2 {
		t.Errorf("expected 2 points, got %d", len(run.Points))
	}
}

func TestReadRunHeaderAlwaysStrict(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.csv", `time,position,depth
1000,5,10
`)

	if _, _, err := readRun(path, true); err == nil {
		t.Error("expected header error even in lenient mode")
	}
}

func TestReadRunPositionOverflow(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.csv", `time,position,length
1000,70000,10
`)

	if _, _, err := readRun(path, false); err == nil {
		t.Error("expected error for position beyond 16 bits")
	}
}
