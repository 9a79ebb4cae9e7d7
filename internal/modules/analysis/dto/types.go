package dto

type PeakOutput struct {
	OwnerScan int
	Bound1    int
	Bound2    int
	// X1 and X2 are the boundary positions rounded to two decimals, empty
	// while unset.
	X1        string
	X2        string
	Value     float64
	ValueText string
	Available bool
}

type ArmOutput struct {
	Peak  int
	Which string
}

type SaveOutput struct {
	Outcome      string
	Path         string
	StaleRemoved bool
}

type StateOutput struct {
	Kind         string
	SourcePath   string
	Available    []int
	Scans        []int
	ScanText     string
	ScanError    string
	SlotsOffered bool
	Samples      int
	OwnerX       []float64
	OwnerY       []float64
	Peaks        []PeakOutput
	Armed        *ArmOutput
	LastSave     *SaveOutput
}
