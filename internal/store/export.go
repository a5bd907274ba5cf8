// Package store exports experiment results as JSON.
package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/peloton/internal/experiment"
	"github.com/san-kum/peloton/internal/metrics"
)

type ExportData struct {
	*experiment.Result
	Trace []metrics.Point `json:"trace,omitempty"`
}

func newExport(res *experiment.Result, withTrace bool) ExportData {
	data := ExportData{Result: res}
	if withTrace {
		data.Trace = res.Trace
	}
	return data
}

func Export(w io.Writer, res *experiment.Result, withTrace bool) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExport(res, withTrace))
}

func ExportJSON(path string, res *experiment.Result, withTrace bool) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return Export(file, res, withTrace)
}

func ExportJSONStdout(res *experiment.Result, withTrace bool) error {
	return Export(os.Stdout, res, withTrace)
}
