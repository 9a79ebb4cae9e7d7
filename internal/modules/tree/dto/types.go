package dto

type TreeInput struct {
	Kind  string
	Saved bool
}

type NodeOutput struct {
	Name  string
	Path  string
	Kind  string
	State string
	Depth int
}

type TreeOutput struct {
	Tree  string
	Root  string
	Nodes []NodeOutput
}

type DeleteInput struct {
	Path    string
	Cascade bool
}

type FailureOutput struct {
	Path  string
	Error string
}

type ReportOutput struct {
	Tree        string
	Pruned      []string
	Added       []string
	RemovedDirs []string
	Deleted     []string
	Failures    []FailureOutput
}
