package dto

type FitInput struct {
	X     []float64
	Y     []float64
	From  int
	To    int
	Model string
}

type FitOutput struct {
	Model     string
	Peak      float64
	Amplitude float64
	Width     float64
	Centre    float64
	Inverted  bool
}
