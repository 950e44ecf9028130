package roster

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/types"
)

// Roster is the company-side attendee directory loaded from the account
// team's spreadsheet. It backs the speaker resolver when vendor call
// metadata carries no attendee list.
type Roster struct {
	Sellers []types.Attendee
}

// Load reads the first sheet of the workbook, detecting the name and email
// columns by header heuristics. Rows without a plausible email are skipped
// quietly.
func Load(path string) (Roster, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Roster{}, fmt.Errorf("roster has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Roster{}, fmt.Errorf("read roster rows: %w", err)
	}
	if len(rows) <= 1 {
		return Roster{}, fmt.Errorf("roster has no data rows")
	}

	nameIdx, emailIdx := -1, -1
	for i, h := range rows[0] {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case emailIdx == -1 && (strings.Contains(l, "email") || strings.Contains(l, "mail")):
			emailIdx = i
		case nameIdx == -1 && strings.Contains(l, "name"):
			nameIdx = i
		}
	}
	if emailIdx == -1 && len(rows[0]) > 1 {
		emailIdx = 1
	}
	if nameIdx == -1 {
		nameIdx = 0
	}

	var r Roster
	for i, row := range rows {
		if i == 0 {
			continue
		}
		att := types.Attendee{}
		if nameIdx < len(row) {
			att.Name = strings.TrimSpace(row[nameIdx])
		}
		if emailIdx >= 0 && emailIdx < len(row) {
			att.Email = strings.TrimSpace(row[emailIdx])
		}
		if !strings.Contains(att.Email, "@") {
			continue
		}
		r.Sellers = append(r.Sellers, att)
	}
	return r, nil
}
