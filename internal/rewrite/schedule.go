// SPDX-License-Identifier: MIT

package rewrite

import (
	"strings"

	crondesc "github.com/lnquy/cron"
)

// HumanizeSchedule converts a 5-field cron expression into a readable
// description for the status page. On any parse failure the raw expression is
// returned unchanged; this never fails.
func HumanizeSchedule(expr string) string {
	d, err := crondesc.NewDescriptor()
	if err != nil {
		return expr
	}
	desc, err := d.ToDescription(expr, crondesc.Locale_en)
	if err != nil {
		return expr
	}
	// A bare time reads better with an explicit cadence.
	if strings.HasPrefix(desc, "At ") {
		desc = "Every day at " + strings.TrimPrefix(desc, "At ")
	}
	return desc
}
