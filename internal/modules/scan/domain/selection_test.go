package domain_test

import (
	"errors"
	"math"
	"math/rand"
	"strconv"
	"testing"

	"peaklab/internal/modules/scan/domain"
)

func TestEncodeCollapsesRuns(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   []int
		want string
	}{
		{[]int{1, 2, 3, 5, 6, 7, 10}, "1-3,5-7,10,"},
		{[]int{4}, "4,"},
		{[]int{2, 1}, "2,1,"},
		{[]int{1, 2, 5, 10, 15}, "1-2,5,10,15,"},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := domain.Encode(tc.in); got != tc.want {
			t.Fatalf("encode %v: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestDecodeExpandsRanges(t *testing.T) {
	t.Parallel()
	got, err := domain.Decode(" 1-3, 5 ,7-8,")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := domain.Selection{1, 2, 3, 5, 7, 8}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"3-1", "1,1", "1-3,2", "a", "0", "-3", "1-2-3", "9-10,10-12", "2-x"} {
		_, err := domain.Decode(in)
		if !errors.Is(err, domain.ErrMalformedRange) {
			t.Fatalf("decode %q: expected malformed range, got %v", in, err)
		}
		var typed *domain.MalformedRangeError
		if !errors.As(err, &typed) || typed.Input != in {
			t.Fatalf("decode %q: expected typed error carrying input, got %v", in, err)
		}
	}
}

func TestDecodeComparesBoundsNumerically(t *testing.T) {
	t.Parallel()
	got, err := domain.Decode("9-10")
	if err != nil {
		t.Fatalf("decode 9-10: %v", err)
	}
	if !got.Equal(domain.Selection{9, 10}) {
		t.Fatalf("unexpected selection %v", got)
	}
}

func TestDecodeStopsAtLargestInt(t *testing.T) {
	t.Parallel()
	text := strconv.Itoa(math.MaxInt-1) + "-" + strconv.Itoa(math.MaxInt)
	got, err := domain.Decode(text)
	if err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
	if !got.Equal(domain.Selection{math.MaxInt - 1, math.MaxInt}) {
		t.Fatalf("unexpected selection %v", got)
	}
}

func TestDecodeRejectsOversizedSelections(t *testing.T) {
	t.Parallel()
	limit := strconv.Itoa(domain.MaxSelection)
	for _, in := range []string{
		"1-5000000",
		"1-" + strconv.Itoa(math.MaxInt),
		"1-" + strconv.Itoa(domain.MaxSelection+1),
		"1-" + limit + "," + strconv.Itoa(domain.MaxSelection+1),
	} {
		if _, err := domain.Decode(in); !errors.Is(err, domain.ErrMalformedRange) {
			t.Fatalf("decode %q: expected malformed range, got %v", in, err)
		}
	}
	got, err := domain.Decode("1-" + limit)
	if err != nil {
		t.Fatalf("decode 1-%s: %v", limit, err)
	}
	if len(got) != domain.MaxSelection || got[len(got)-1] != domain.MaxSelection {
		t.Fatalf("expected %d scans, got %d", domain.MaxSelection, len(got))
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		set := map[int]struct{}{}
		var scans []int
		for n := rng.Intn(25); n > 0; n-- {
			v := 1 + rng.Intn(60)
			if _, ok := set[v]; ok {
				continue
			}
			set[v] = struct{}{}
			scans = append(scans, v)
		}
		text := domain.Encode(scans)
		got, err := domain.Decode(text)
		if err != nil {
			t.Fatalf("decode %q: %v", text, err)
		}
		if !got.Equal(scans) {
			t.Fatalf("round trip of %v via %q gave %v", scans, text, got)
		}
	}
}

func TestSelectionHelpers(t *testing.T) {
	t.Parallel()
	sel := domain.Selection{5, 1, 10}
	if !sel.Equal(domain.Selection{1, 5, 10}) {
		t.Fatalf("equality must ignore order")
	}
	if sel.Equal(domain.Selection{1, 5}) {
		t.Fatalf("different sets must differ")
	}
	restricted := sel.Restrict([]int{1, 2, 3, 10})
	if len(restricted) != 2 || restricted[0] != 1 || restricted[1] != 10 {
		t.Fatalf("unexpected restriction %v", restricted)
	}
	if _, ok := sel.Single(); ok {
		t.Fatalf("three scans are not a single selection")
	}
	if scan, ok := (domain.Selection{4}).Single(); !ok || scan != 4 {
		t.Fatalf("expected single scan 4")
	}
}
