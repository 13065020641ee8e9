package cellvalue

import (
	"encoding/json"

	"salesleads/internal/leads"
)

var provider = &Provider{Description: "Sales leads imported from Dynamics"}

// LeadEntity renders an upcoming lead as an entity card.
func LeadEntity(row leads.LeadRow) CellValue {
	props := map[string]CellValue{
		"Account":        String(row.Account),
		"Topic":          String(row.Topic),
		"Probability":    FormattedNumber(row.Probability, "0%"),
		"Est. Revenue":   FormattedNumber(row.EstRevenue, leads.CurrencyFormat),
		"Expected Value": FormattedNumber(row.ExpectedValue, leads.CurrencyFormat),
	}
	if row.Hyperlink != nil {
		props["Customer Row"] = String(row.Hyperlink.DocumentReference)
	}
	return Entity(row.Account, props, &Layouts{
		Compact: &Compact{Icon: "ShoppingBag"},
		Card: &Card{
			Title:    &CardProperty{Property: "Account"},
			SubTitle: &CardProperty{Property: "Topic"},
		},
	}, provider)
}

// SummaryEntity renders a salesperson's pipeline totals.
func SummaryEntity(s leads.OwnerSummary) CellValue {
	return Entity(s.Owner, map[string]CellValue{
		"Owner":          String(s.Owner),
		"Leads":          Double(float64(s.Leads)),
		"Upcoming":       Double(float64(s.Upcoming)),
		"Revenue":        FormattedNumber(s.Revenue, leads.CurrencyFormat),
		"Expected Value": FormattedNumber(s.ExpectedValue, leads.CurrencyFormat),
	}, &Layouts{
		Compact: &Compact{Icon: "Person"},
		Card:    &Card{Title: &CardProperty{Property: "Owner"}},
	}, provider)
}

// ClosedSalesArray renders last year's closed sales as an array of
// date and revenue pairs, the same columns the chart is drawn from.
func ClosedSalesArray(sales []leads.Lead) CellValue {
	rows := make([][]CellValue, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, []CellValue{
			FormattedNumber(s.EstCloseDate, leads.DateFormat),
			FormattedNumber(s.EstRevenue, leads.CurrencyFormat),
		})
	}
	return Array(rows)
}

// Marshal encodes a list of cell values as a JSON array.
func Marshal(values []CellValue) (json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(values))
	for _, v := range values {
		b, err := v.ToJSON()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return json.Marshal(out)
}
