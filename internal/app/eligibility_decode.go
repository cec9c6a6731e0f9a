package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
)

const eligibleMarker = "E"

// eligibilityColumns maps a results-row cell index to the roster slot it
// reports. The page renders one marker column per slot at every other cell,
// starting at cell 3. Only C through Util are mapped; the SP/RP/P columns have
// not been confirmed against the live layout.
var eligibilityColumns = []struct {
	Cell     int
	Position domain.Position
}{
	{3, domain.PosC},
	{5, domain.Pos1B},
	{7, domain.Pos2B},
	{9, domain.Pos3B},
	{11, domain.PosSS},
	{13, domain.PosCI},
	{15, domain.PosMI},
	{17, domain.PosLF},
	{19, domain.PosCF},
	{21, domain.PosRF},
	{23, domain.PosOF},
	{25, domain.PosUtil},
}

var (
	ErrNoResultsTable = errors.New("results table not found")
	ErrNoResultRows   = errors.New("results table has no rows")
	ErrShortRow       = errors.New("results row too short")
)

const resultsTableSelector = "table.Tst-table"

// DecodedRows is what one results table yields.
type DecodedRows struct {
	Positions domain.EligibilitySet
	// Rows counts the body rows, Skipped those too short to decode.
	Rows    int
	Skipped int
}

// DecodeEligibility parses the results table HTML and returns the union of the
// slots marked eligible across all body rows. Short rows are skipped; the
// table only fails with ErrShortRow when no row could be decoded.
func DecodeEligibility(tableHTML string) (DecodedRows, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tableHTML))
	if err != nil {
		return DecodedRows{}, fmt.Errorf("parse results html: %w", err)
	}

	table := doc.Find(resultsTableSelector).First()
	if table.Length() == 0 {
		return DecodedRows{}, ErrNoResultsTable
	}
	rows := table.Find("tbody > tr")
	if rows.Length() == 0 {
		return DecodedRows{}, ErrNoResultRows
	}

	minCells := eligibilityColumns[len(eligibilityColumns)-1].Cell + 1
	out := DecodedRows{Rows: rows.Length()}
	shortest := minCells
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < minCells {
			out.Skipped++
			shortest = min(shortest, cells.Length())
			return
		}
		for _, col := range eligibilityColumns {
			if strings.TrimSpace(cells.Eq(col.Cell).Text()) == eligibleMarker {
				out.Positions.Add(col.Position)
			}
		}
	})
	if out.Skipped == out.Rows {
		return DecodedRows{Rows: out.Rows, Skipped: out.Skipped},
			fmt.Errorf("%w: %d cells, want at least %d", ErrShortRow, shortest, minCells)
	}
	return out, nil
}
