package artifacts

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shanep/canvas-tools/internal/provisioning"
)

// csvHeader is the column order used by every export. Downstream email
// tooling keys on "email", "username", "password", and "status".
var csvHeader = []string{
	"email", "username", "instance_id", "public_ip", "password", "status", "error",
}

// WriteResultsCSV writes one row per workflow result. Private keys are
// deliberately not exported here; they go into per-student scripts instead.
func WriteResultsCSV(w io.Writer, results []provisioning.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range results {
		row := []string{
			r.Email,
			r.Account,
			r.InstanceID,
			r.PublicIP,
			r.Password,
			string(r.Status),
			r.Err,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
