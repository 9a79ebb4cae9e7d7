package domain

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var ErrMalformedRange = errors.New("malformed range")

// MaxSelection bounds how many scans one range text may select.
const MaxSelection = 10000

type MalformedRangeError struct {
	Input  string
	Token  string
	Reason string
}

func (e *MalformedRangeError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("malformed range %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("malformed range %q at %q: %s", e.Input, e.Token, e.Reason)
}

func (e *MalformedRangeError) Is(target error) bool {
	return target == ErrMalformedRange
}

// Selection is an ordered list of unique positive scan numbers. Two
// selections are the same selection when they hold the same set.
type Selection []int

func (s Selection) Equal(other Selection) bool {
	if len(s) != len(other) {
		return false
	}
	a := slices.Clone(s)
	b := slices.Clone(other)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

func (s Selection) Contains(scan int) bool {
	return slices.Contains(s, scan)
}

// Single returns the scan when exactly one is selected.
func (s Selection) Single() (int, bool) {
	if len(s) != 1 {
		return 0, false
	}
	return s[0], true
}

// Restrict keeps the scans present in available, in selection order.
func (s Selection) Restrict(available []int) Selection {
	out := make(Selection, 0, len(s))
	for _, scan := range s {
		if slices.Contains(available, scan) {
			out = append(out, scan)
		}
	}
	return out
}

func (s Selection) String() string {
	return Encode(s)
}

// Encode walks scans in the given order and collapses each run of
// consecutive ascending numbers into start-end. Every token ends with a
// comma, e.g. [1 2 3 5 6 7 10] -> "1-3,5-7,10,".
func Encode(scans []int) string {
	var b strings.Builder
	for i := 0; i < len(scans); {
		start := scans[i]
		j := i
		for j+1 < len(scans) && scans[j+1] == scans[j]+1 {
			j++
		}
		if j > i {
			b.WriteString(strconv.Itoa(start))
			b.WriteByte('-')
			b.WriteString(strconv.Itoa(scans[j]))
		} else {
			b.WriteString(strconv.Itoa(start))
		}
		b.WriteByte(',')
		i = j + 1
	}
	return b.String()
}

// Decode parses comma separated scan numbers and inclusive a-b ranges.
// Empty tokens are skipped, so trailing commas are accepted.
func Decode(text string) (Selection, error) {
	out := Selection{}
	seen := map[int]struct{}{}
	for _, raw := range strings.Split(text, ",") {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		start, end, err := parseToken(text, token)
		if err != nil {
			return nil, err
		}
		if end-start >= MaxSelection-len(out) {
			return nil, &MalformedRangeError{Input: text, Token: token, Reason: fmt.Sprintf("selects more than %d scans", MaxSelection)}
		}
		for scan := start; ; scan++ {
			if _, dup := seen[scan]; dup {
				return nil, &MalformedRangeError{Input: text, Token: token, Reason: fmt.Sprintf("scan %d selected twice", scan)}
			}
			seen[scan] = struct{}{}
			out = append(out, scan)
			if scan == end {
				break
			}
		}
	}
	return out, nil
}

func parseToken(input, token string) (int, int, error) {
	parts := strings.Split(token, "-")
	switch len(parts) {
	case 1:
		n, err := parseScan(input, token, parts[0])
		if err != nil {
			return 0, 0, err
		}
		return n, n, nil
	case 2:
		start, err := parseScan(input, token, parts[0])
		if err != nil {
			return 0, 0, err
		}
		end, err := parseScan(input, token, parts[1])
		if err != nil {
			return 0, 0, err
		}
		if start > end {
			return 0, 0, &MalformedRangeError{Input: input, Token: token, Reason: "range start is after its end"}
		}
		return start, end, nil
	default:
		return 0, 0, &MalformedRangeError{Input: input, Token: token, Reason: "too many dashes"}
	}
}

func parseScan(input, token, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &MalformedRangeError{Input: input, Token: token, Reason: "not an integer"}
	}
	if n < 1 {
		return 0, &MalformedRangeError{Input: input, Token: token, Reason: "scan numbers start at 1"}
	}
	return n, nil
}
