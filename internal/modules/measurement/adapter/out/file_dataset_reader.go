package out

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"peaklab/internal/modules/measurement/domain"
	measurementout "peaklab/internal/modules/measurement/port/out"
	apperrors "peaklab/internal/platform/errors"
	"peaklab/internal/platform/kind"
)

const (
	PotentialColumn = "Potential applied (V)"
	CurrentColumn   = "WE(1).Current (A)"
	ScanColumn      = "Scan"
)

type FileDatasetReader struct{}

func NewFileDatasetReader() measurementout.DatasetReader {
	return &FileDatasetReader{}
}

func (r *FileDatasetReader) Read(_ context.Context, path string, k kind.Kind) (domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Dataset{}, fmt.Errorf("%w: %s", apperrors.ErrNotFound, path)
		}
		return domain.Dataset{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var curves map[int]domain.Curve
	switch k {
	case kind.Raman:
		curves, err = ReadSpectrum(f)
	case kind.Nova:
		curves, err = ReadVoltammogram(f)
	default:
		return domain.Dataset{}, fmt.Errorf("%w: unknown domain %q", apperrors.ErrInvalidInput, k)
	}
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("read %s: %w", path, err)
	}
	return domain.Dataset{Kind: k, SourcePath: path, Curves: curves}, nil
}

// ReadSpectrum parses tab separated shift/intensity pairs. Leading lines
// that are not numeric are treated as a header. The file lists shifts in
// descending order, so samples are reversed.
func ReadSpectrum(src io.Reader) (map[int]domain.Curve, error) {
	reader := csv.NewReader(src)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	var x, y []float64
	line := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		line++
		if len(row) < 2 {
			if len(x) == 0 {
				continue
			}
			return nil, fmt.Errorf("%w: line %d has %d fields", apperrors.ErrInvalidInput, line, len(row))
		}
		xv, xerr := parseFloat(row[0])
		yv, yerr := parseFloat(row[1])
		if xerr != nil || yerr != nil {
			if len(x) == 0 {
				continue
			}
			return nil, fmt.Errorf("%w: line %d is not numeric", apperrors.ErrInvalidInput, line)
		}
		x = append(x, xv)
		y = append(y, yv)
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: no samples", apperrors.ErrInvalidInput)
	}
	slices.Reverse(x)
	slices.Reverse(y)
	return map[int]domain.Curve{domain.SpectrumScan: {X: x, Y: y}}, nil
}

// ReadVoltammogram parses a semicolon separated export with a header row.
// Without a Scan column every row belongs to scan 1.
func ReadVoltammogram(src io.Reader) (map[int]domain.Curve, error) {
	reader := csv.NewReader(src)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty file", apperrors.ErrInvalidInput)
	}
	potential, current, scanCol := -1, -1, -1
	for i, h := range rows[0] {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case PotentialColumn:
			potential = i
		case CurrentColumn:
			current = i
		case ScanColumn:
			scanCol = i
		}
	}
	if potential < 0 || current < 0 {
		return nil, fmt.Errorf("%w: header needs %q and %q", apperrors.ErrInvalidInput, PotentialColumn, CurrentColumn)
	}
	width := max(potential, current, scanCol) + 1

	curves := map[int]domain.Curve{}
	for n, row := range rows[1:] {
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) < width {
			return nil, fmt.Errorf("%w: row %d has %d fields, want %d", apperrors.ErrInvalidInput, n+2, len(row), width)
		}
		xv, err := parseFloat(row[potential])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d potential: %v", apperrors.ErrInvalidInput, n+2, err)
		}
		yv, err := parseFloat(row[current])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d current: %v", apperrors.ErrInvalidInput, n+2, err)
		}
		scan := 1
		if scanCol >= 0 {
			scan, err = strconv.Atoi(strings.TrimSpace(row[scanCol]))
			if err != nil || scan < 1 {
				return nil, fmt.Errorf("%w: row %d has bad scan %q", apperrors.ErrInvalidInput, n+2, row[scanCol])
			}
		}
		c := curves[scan]
		c.X = append(c.X, xv)
		c.Y = append(c.Y, yv)
		curves[scan] = c
	}
	if len(curves) == 0 {
		return nil, fmt.Errorf("%w: no samples", apperrors.ErrInvalidInput)
	}
	return curves, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
