package report

import (
	"encoding/json"
	"io"
)

type jsonReport struct {
	MetricReport
	Summary Summary `json:"summary"`
}

func WriteJSON(w io.Writer, r MetricReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{MetricReport: r, Summary: r.Summary()})
}
