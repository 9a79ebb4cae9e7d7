package dto

type OpenInput struct {
	Path string
	Kind string
}

type CurveOutput struct {
	X []float64
	Y []float64
}

type DatasetOutput struct {
	Kind       string
	SourcePath string
	Scans      []int
	Curves     map[int]CurveOutput
}
