package leads

import (
	"fmt"
	"strings"
	"time"
)

// UpcomingCutoffSerial is the close-date serial after which an open lead
// counts as upcoming on a salesperson's sheet.
const UpcomingCutoffSerial = 42986

const (
	CurrencyFormat = "$#,##0.00"
	DateFormat     = "m/d/yyyy"

	hyperlinkScreenTip = "Click to jump to customer's contact information."

	// The leads table header sits on row 3, so data row i is sheet row i+4.
	leadsFirstDataRow = 4
)

// CustomerRow is the address of a customer's row in the Customers sheet,
// used as a hyperlink target from the analysis sheet.
type CustomerRow struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// CustomerRowAddress returns the Customers sheet range for the customer at index.
// Row 1 holds the header, so customer 0 is on row 2.
func CustomerRowAddress(index int) string {
	return fmt.Sprintf("Customers!A%d:E%d", index+2, index+2)
}

// CustomerRows lists the row address of every customer in table order.
func CustomerRows(customers []Customer) []CustomerRow {
	rows := make([]CustomerRow, 0, len(customers))
	for i, c := range customers {
		rows = append(rows, CustomerRow{Name: c.Name, Address: CustomerRowAddress(i)})
	}
	return rows
}

type Hyperlink struct {
	TextToDisplay     string `json:"textToDisplay"`
	ScreenTip         string `json:"screenTip"`
	DocumentReference string `json:"documentReference"`
}

// LeadRow is one row of the salesperson's upcoming-leads table.
type LeadRow struct {
	Account       string     `json:"account"`
	Topic         string     `json:"topic"`
	Probability   float64    `json:"probability"`
	EstRevenue    float64    `json:"estRevenue"`
	ExpectedValue float64    `json:"expectedValue"`
	Formula       string     `json:"formula"`
	Hyperlink     *Hyperlink `json:"hyperlink,omitempty"`
}

type ColorCriterion struct {
	Type    string  `json:"type"`
	Formula *string `json:"formula"`
	Color   string  `json:"color"`
}

type ColorScale struct {
	Minimum  ColorCriterion `json:"minimum"`
	Midpoint ColorCriterion `json:"midpoint"`
	Maximum  ColorCriterion `json:"maximum"`
}

// Chart describes last year's closed sales chart. DataRange points at the
// date and revenue columns of the hidden sheet.
type Chart struct {
	Type            string `json:"type"`
	Title           string `json:"title"`
	DataRange       string `json:"dataRange"`
	TopLeft         string `json:"topLeft"`
	BottomRight     string `json:"bottomRight"`
	CategoryTitle   string `json:"categoryTitle"`
	SeriesName      string `json:"seriesName"`
	Trendline       string `json:"trendline"`
	PolynomialOrder int    `json:"polynomialOrder"`
}

// Analysis is everything the add-in needs to build a salesperson's sheet.
type Analysis struct {
	Salesperson        string     `json:"salesperson"`
	SheetName          string     `json:"sheetName"`
	TableName          string     `json:"tableName"`
	HiddenSheetName    string     `json:"hiddenSheetName"`
	Title              string     `json:"title"`
	Leads              []LeadRow  `json:"leads"`
	TotalExpectedValue float64    `json:"totalExpectedValue"`
	ClosedSales        []Lead     `json:"closedSales"`
	ColorScale         ColorScale `json:"colorScale"`
	ColorScaleRange    string     `json:"colorScaleRange"`
	Chart              *Chart     `json:"chart,omitempty"`
}

// Session carries the state of one analysis run. A new session is created
// for every run, so nothing leaks from one salesperson's analysis into the next.
type Session struct {
	owner     string
	customers []Customer
	leads     []Lead
	now       time.Time
	used      bool
}

func NewSession(owner string, customers []Customer, leads []Lead, now time.Time) *Session {
	return &Session{
		owner:     strings.TrimSpace(owner),
		customers: customers,
		leads:     leads,
		now:       now,
	}
}

// Analyze builds the salesperson's analysis. A session can be analyzed once.
func (s *Session) Analyze() (Analysis, error) {
	if s.used {
		return Analysis{}, ErrSessionUsed
	}
	s.used = true
	if s.owner == "" {
		return Analysis{}, ErrNoSalesperson
	}

	addresses := make(map[string]string, len(s.customers))
	for i, c := range s.customers {
		if _, ok := addresses[c.Name]; !ok {
			addresses[c.Name] = CustomerRowAddress(i)
		}
	}

	a := Analysis{
		Salesperson:     s.owner,
		SheetName:       s.owner,
		TableName:       strings.ReplaceAll(s.owner+"LeadsTable", " ", ""),
		HiddenSheetName: s.owner + "HiddenTemp",
		Title:           s.owner + "'s Upcoming Leads",
		Leads:           []LeadRow{},
		ClosedSales:     []Lead{},
		ColorScale:      defaultColorScale(),
	}

	lastYear := s.now.Year() - 1
	for _, lead := range s.leads {
		if lead.Owner != s.owner {
			continue
		}
		if lead.EstCloseDate > UpcomingCutoffSerial {
			a.Leads = append(a.Leads, s.leadRow(lead, len(a.Leads), addresses))
		}
		if year, ok := serialYear(lead.EstCloseDate); ok && year == lastYear {
			a.ClosedSales = append(a.ClosedSales, lead)
		}
	}

	for _, row := range a.Leads {
		a.TotalExpectedValue += row.ExpectedValue
	}
	a.ColorScaleRange = fmt.Sprintf("D3:D%d", len(a.Leads)+3)

	if n := len(a.ClosedSales); n > 0 {
		a.Chart = &Chart{
			Type:            "ColumnClustered",
			Title:           s.owner + "'s Sales Last Year",
			DataRange:       fmt.Sprintf("'%s'!E1:F%d", a.HiddenSheetName, n),
			TopLeft:         "F1",
			BottomRight:     "S24",
			CategoryTitle:   "Sales Chronologically",
			SeriesName:      "Value in $",
			Trendline:       "Polynomial",
			PolynomialOrder: 5,
		}
	}
	return a, nil
}

func (s *Session) leadRow(lead Lead, index int, addresses map[string]string) LeadRow {
	sheetRow := index + leadsFirstDataRow
	row := LeadRow{
		Account:       lead.Account,
		Topic:         lead.Topic,
		Probability:   lead.Probability,
		EstRevenue:    lead.EstRevenue,
		ExpectedValue: lead.Probability * lead.EstRevenue,
		Formula:       fmt.Sprintf("=B%d * C%d", sheetRow, sheetRow),
	}
	if addr, ok := addresses[lead.Account]; ok {
		row.Hyperlink = &Hyperlink{
			TextToDisplay:     lead.Account,
			ScreenTip:         hyperlinkScreenTip,
			DocumentReference: addr,
		}
	}
	return row
}

func defaultColorScale() ColorScale {
	midpoint := "1000000"
	return ColorScale{
		Minimum:  ColorCriterion{Type: "LowestValue", Color: "#5858FA"},
		Midpoint: ColorCriterion{Type: "Number", Formula: &midpoint, Color: "#FFFF00"},
		Maximum:  ColorCriterion{Type: "HighestValue", Color: "#FA5858"},
	}
}
