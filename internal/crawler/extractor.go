package crawler

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTableSelector matches the daily data table of the source pages.
const DefaultTableSelector = "table.table-striped"

// DayTemps is one parsed row of a month table.
type DayTemps struct {
	Day  int
	Max  float64
	Min  float64
	Mean float64
}

// ExtractMonthTable parses the daily temperature table of one month page.
//
// found is false when no element matches selector; that is the source's way
// of saying there is no data for the month. Only the first daysInMonth rows
// after the header are read so the trailing summary rows are ignored. The
// day number is the row position, and a row with fewer than three cells is
// skipped without shifting the rows after it. A temperature that does not
// parse is recorded as 0.
func ExtractMonthTable(htmlContent string, daysInMonth int, selector string) (rows []DayTemps, found bool, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, false, err
	}
	if selector == "" {
		selector = DefaultTableSelector
	}

	table := doc.Find(selector).First()
	if table.Length() == 0 {
		return nil, false, nil
	}

	rows = []DayTemps{}
	table.Find("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if i == 0 {
			return true // header
		}
		if i > daysInMonth {
			return false
		}
		cells := tr.Find("td")
		if cells.Length() < 3 {
			return true
		}
		rows = append(rows, DayTemps{
			Day:  i,
			Max:  parseTemp(cells.Eq(0).Text()),
			Min:  parseTemp(cells.Eq(1).Text()),
			Mean: parseTemp(cells.Eq(2).Text()),
		})
		return true
	})
	return rows, true, nil
}

func parseTemp(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
