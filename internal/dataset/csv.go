package dataset

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type column int

const (
	colTime column = iota
	colPosition
	colLength
)

// parseHeader maps a CSV header line to a column layout. Column names are
// case-insensitive and may appear in any order, once each: time, position,
// and length (also accepted as currentqueuelength or current_queue_length).
func parseHeader(line string) ([]column, error) {
	fields := strings.Split(line, ",")
	cols := make([]column, 0, len(fields))
	for _, f := range fields {
		var col column
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "time":
			col = colTime
		case "position":
			col = colPosition
		case "length", "currentqueuelength", "current_queue_length":
			col = colLength
		default:
			return nil, fmt.Errorf("unknown column %q", strings.TrimSpace(f))
		}
		for _, seen := range cols {
			if seen == col {
				return nil, fmt.Errorf("duplicate column %q", strings.TrimSpace(f))
			}
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func parseRow(line string, cols []column) (DataPoint, error) {
	fields := strings.Split(line, ",")
	if len(fields) != len(cols) {
		return DataPoint{}, fmt.Errorf("expected %d columns, got %d", len(cols), len(fields))
	}

	var p DataPoint
	for i, f := range fields {
		f = strings.TrimSpace(f)
		switch cols[i] {
		case colTime:
			v, err := strconv.ParseUint(f, 10, 64)
			if err != nil {
				return DataPoint{}, fmt.Errorf("bad time %q", f)
			}
			p.Time = v
		case colPosition:
			v, err := strconv.ParseUint(f, 10, 16)
			if err != nil {
				return DataPoint{}, fmt.Errorf("bad position %q", f)
			}
			p.Position = uint16(v)
		case colLength:
			v, err := strconv.ParseUint(f, 10, 16)
			if err != nil {
				return DataPoint{}, fmt.Errorf("bad length %q", f)
			}
			p.Length = uint16(v)
		}
	}
	return p, nil
}

// readRun parses one queue-log CSV file. The first line must be a valid
// header. In strict mode any malformed data row fails the file; in lenient
// mode malformed rows are skipped and counted. Header errors always fail.
func readRun(path string, lenient bool) (QueueRun, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return QueueRun{}, 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return QueueRun{}, 0, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return QueueRun{}, 0, &ParseError{File: path, Line: 1, Msg: "missing header"}
	}
	cols, err := parseHeader(scanner.Text())
	if err != nil {
		return QueueRun{}, 0, &ParseError{File: path, Line: 1, Msg: err.Error()}
	}

	run := QueueRun{File: path}
	skipped := 0
	line := 1
	for scanner.Scan() {
		line++
		point, err := parseRow(scanner.Text(), cols)
		if err != nil {
			if lenient {
				skipped++
				continue
			}
			return QueueRun{}, 0, &ParseError{File: path, Line: line, Msg: err.Error()}
		}
		run.Points = append(run.Points, point)
	}
	if err := scanner.Err(); err != nil {
		return QueueRun{}, 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return run, skipped, nil
}
