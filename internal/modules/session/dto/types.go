package dto

type PeakInput struct {
	Bound1    int
	Bound2    int
	Value     float64
	Available bool
}

type SaveInput struct {
	SourcePath string
	Kind       string
	Scans      []int
	Peaks      []PeakInput
}

type Outcome string

const (
	OutcomeSaved         Outcome = "saved"
	OutcomeNothingToSave Outcome = "nothing_to_save"
)

type SaveOutput struct {
	Outcome      Outcome
	Path         string
	StaleRemoved bool
	Removed      []string
}

type PeakOutput struct {
	Bound1    int
	Bound2    int
	Value     float64
	Available bool
}

type SessionOutput struct {
	Path       string
	SourcePath string
	Kind       string
	Scans      []int
	ScanText   string
	Peaks      []PeakOutput
}

type ReindexOutput struct {
	Sessions int
	Peaks    int
	Skipped  []string
}

type PeakRow struct {
	SessionPath string
	SourcePath  string
	Kind        string
	Scans       string
	Ordinal     int
	Bound1      int
	Bound2      int
	Value       float64
	Available   bool
}

type ExportOutput struct {
	Path string
	Rows int
}
