package domain

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	scandomain "peaklab/internal/modules/scan/domain"
	apperrors "peaklab/internal/platform/errors"
	"peaklab/internal/platform/kind"
)

const (
	KeyFilepath = "filepath"
	KeyBound1   = "bound_1"
	KeyBound2   = "bound_2"
	KeyPeakVal  = "peak_val"
	KeyScans    = "cvNumberStr"

	Unavailable = "N/A"
	Unset       = -1
)

type Peak struct {
	Bound1    int
	Bound2    int
	Value     float64
	Available bool
}

// Complete reports whether both boundaries were picked.
func (p Peak) Complete() bool {
	return p.Bound1 >= 0 && p.Bound2 >= 0
}

func (p Peak) ValueText() string {
	if !p.Available {
		return Unavailable
	}
	return strconv.FormatFloat(p.Value, 'f', -1, 64)
}

type Session struct {
	SourcePath string
	Kind       kind.Kind
	Scans      []int
	Peaks      []Peak
}

// Resolved counts peaks with a fitted value.
func (s Session) Resolved() int {
	n := 0
	for _, p := range s.Peaks {
		if p.Available && p.Complete() {
			n++
		}
	}
	return n
}

// Worth reports whether the session carries anything beyond defaults: a
// resolved peak, or a selection of several scans.
func (s Session) Worth() bool {
	return s.Resolved() > 0 || s.Kind.MultiScan() && len(s.Scans) > 1
}

// Encode renders the key;value form. Peaks missing a boundary are left
// out; peaks without a value are written with N/A.
func Encode(s Session) string {
	var b strings.Builder
	writeLine(&b, KeyFilepath, s.SourcePath)
	for _, p := range s.Peaks {
		if !p.Complete() {
			continue
		}
		writeLine(&b, KeyBound1, strconv.Itoa(p.Bound1))
		writeLine(&b, KeyBound2, strconv.Itoa(p.Bound2))
		writeLine(&b, KeyPeakVal, p.ValueText())
	}
	if s.Kind.MultiScan() {
		writeLine(&b, KeyScans, scandomain.Encode(s.Scans))
	}
	return b.String()
}

func writeLine(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteByte(';')
	b.WriteString(value)
	b.WriteByte('\n')
}

// Decode reads the key;value form. Peak records are positional: bound_1
// opens one, bound_2 fills it and peak_val closes it. Any other key holds
// the scan range. The kind is not part of the text and is left empty.
func Decode(text string) (Session, error) {
	var s Session
	open := -1
	scanner := bufio.NewScanner(strings.NewReader(text))
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		key, value, ok := strings.Cut(raw, ";")
		if !ok {
			return Session{}, fmt.Errorf("%w: line %d has no ';'", apperrors.ErrInvalidInput, line)
		}
		switch key {
		case KeyFilepath:
			s.SourcePath = value
		case KeyBound1:
			b1, err := parseBound(line, value)
			if err != nil {
				return Session{}, err
			}
			s.Peaks = append(s.Peaks, Peak{Bound1: b1, Bound2: Unset})
			open = len(s.Peaks) - 1
		case KeyBound2:
			if open < 0 {
				return Session{}, fmt.Errorf("%w: line %d: bound_2 without bound_1", apperrors.ErrInvalidInput, line)
			}
			b2, err := parseBound(line, value)
			if err != nil {
				return Session{}, err
			}
			s.Peaks[open].Bound2 = b2
		case KeyPeakVal:
			if open < 0 {
				return Session{}, fmt.Errorf("%w: line %d: peak_val without bound_1", apperrors.ErrInvalidInput, line)
			}
			if v := strings.TrimSpace(value); v != Unavailable && v != "" {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return Session{}, fmt.Errorf("%w: line %d: peak value %q", apperrors.ErrInvalidInput, line, value)
				}
				s.Peaks[open].Value = f
				s.Peaks[open].Available = true
			}
			open = -1
		default:
			scans, err := scandomain.Decode(value)
			if err != nil {
				return Session{}, fmt.Errorf("line %d: %w", line, err)
			}
			s.Scans = scans
		}
	}
	if err := scanner.Err(); err != nil {
		return Session{}, fmt.Errorf("scan session text: %w", err)
	}
	return s, nil
}

func parseBound(line int, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: line %d: bad sample index %q", apperrors.ErrInvalidInput, line, value)
	}
	return n, nil
}
