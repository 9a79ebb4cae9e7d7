package dto

type SelectionOutput struct {
	Scans []int
	Text  string
}
