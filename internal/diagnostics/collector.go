package diagnostics

import "errors"

var (
	COMPILER_ERROR_FOUND = errors.New("compiler error found")
)

// Reporter receives every diagnostic that aborts a module. Formatting and
// printing are up to the implementation.
type Reporter interface {
	ReportAndSave(diag Diag)
}

type Collector struct {
	Diags []Diag
}

func New() *Collector {
	return &Collector{
		Diags: nil,
	}
}

func (collector *Collector) ReportAndSave(diag Diag) {
	collector.Diags = append(collector.Diags, diag)
}

func (collector *Collector) HasFatal() bool {
	for _, diag := range collector.Diags {
		if diag.IsFatal() {
			return true
		}
	}
	return false
}
