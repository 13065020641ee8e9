package leads

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/type/date"
)

func sampleCustomers() []Customer {
	return []Customer{
		{Name: "Contoso", Phone: "555-0100", City: "Seattle", PrimaryContact: "Ann", Email: "ann@contoso.example"},
		{Name: "Fabrikam", Phone: "555-0101", City: "Redmond", PrimaryContact: "Ben", Email: "ben@fabrikam.example"},
	}
}

func sampleLeads() []Lead {
	return []Lead{
		{Owner: "Jane Doe", Account: "Contoso", Topic: "Servers", Probability: 0.5, EstCloseDate: 43000, EstRevenue: 200000},
		{Owner: "Jane Doe", Account: "Fabrikam", Topic: "Laptops", Probability: 0.25, EstCloseDate: 42900, EstRevenue: 1000},
		{Owner: "Jane Doe", Account: "Unknown Co", Topic: "Support", Probability: 1, EstCloseDate: 43200, EstRevenue: 10},
		{Owner: "Bob", Account: "Contoso", Topic: "Cloud", Probability: 0.9, EstCloseDate: 43050, EstRevenue: 5},
	}
}

func TestSessionAnalyze(t *testing.T) {
	now := time.Date(2018, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession(" Jane Doe ", sampleCustomers(), sampleLeads(), now)

	a, err := s.Analyze()
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", a.SheetName)
	assert.Equal(t, "JaneDoeLeadsTable", a.TableName)
	assert.Equal(t, "Jane DoeHiddenTemp", a.HiddenSheetName)
	assert.Equal(t, "Jane Doe's Upcoming Leads", a.Title)

	require.Len(t, a.Leads, 2)
	first := a.Leads[0]
	assert.Equal(t, "Contoso", first.Account)
	assert.InDelta(t, 100000, first.ExpectedValue, 1e-9)
	assert.Equal(t, "=B4 * C4", first.Formula)
	require.NotNil(t, first.Hyperlink)
	assert.Equal(t, "Customers!A2:E2", first.Hyperlink.DocumentReference)
	assert.Equal(t, "Contoso", first.Hyperlink.TextToDisplay)

	second := a.Leads[1]
	assert.Equal(t, "Unknown Co", second.Account)
	assert.Equal(t, "=B5 * C5", second.Formula)
	assert.Nil(t, second.Hyperlink)

	assert.InDelta(t, 100010, a.TotalExpectedValue, 1e-9)
	assert.Equal(t, "D3:D5", a.ColorScaleRange)

	require.Len(t, a.ClosedSales, 2)
	assert.Equal(t, "Contoso", a.ClosedSales[0].Account)
	assert.Equal(t, "Fabrikam", a.ClosedSales[1].Account)

	require.NotNil(t, a.Chart)
	assert.Equal(t, "'Jane DoeHiddenTemp'!E1:F2", a.Chart.DataRange)
	assert.Equal(t, "Jane Doe's Sales Last Year", a.Chart.Title)
	assert.Equal(t, 5, a.Chart.PolynomialOrder)

	require.NotNil(t, a.ColorScale.Midpoint.Formula)
	assert.Equal(t, "1000000", *a.ColorScale.Midpoint.Formula)
}

func TestSessionAnalyze_OnlyOnce(t *testing.T) {
	s := NewSession("Bob", nil, sampleLeads(), time.Now())
	_, err := s.Analyze()
	require.NoError(t, err)

	_, err = s.Analyze()
	assert.ErrorIs(t, err, ErrSessionUsed)
}

func TestSessionAnalyze_IndependentSessions(t *testing.T) {
	now := time.Date(2018, 6, 1, 0, 0, 0, 0, time.UTC)
	first, err := NewSession("Jane Doe", sampleCustomers(), sampleLeads(), now).Analyze()
	require.NoError(t, err)
	second, err := NewSession("Jane Doe", sampleCustomers(), sampleLeads(), now).Analyze()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSessionAnalyze_NoSalesperson(t *testing.T) {
	_, err := NewSession("  ", nil, nil, time.Now()).Analyze()
	assert.ErrorIs(t, err, ErrNoSalesperson)
}

func TestSessionAnalyze_NoClosedSales(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	a, err := NewSession("Bob", nil, sampleLeads(), now).Analyze()
	require.NoError(t, err)
	assert.Empty(t, a.ClosedSales)
	assert.Nil(t, a.Chart)
	assert.Len(t, a.Leads, 1)
}

func TestSummaries(t *testing.T) {
	got := Summaries(sampleLeads())
	require.Len(t, got, 2)

	assert.Equal(t, "Jane Doe", got[0].Owner)
	assert.Equal(t, 3, got[0].Leads)
	assert.Equal(t, 2, got[0].Upcoming)
	assert.InDelta(t, 201010, got[0].Revenue, 1e-9)
	assert.InDelta(t, 100260, got[0].ExpectedValue, 1e-9)

	assert.Equal(t, "Bob", got[1].Owner)
	assert.InDelta(t, 4.5, got[1].ExpectedValue, 1e-9)

	assert.Equal(t, []string{"Jane Doe", "Bob"}, Owners(sampleLeads()))
}

func TestCustomerRows(t *testing.T) {
	rows := CustomerRows(sampleCustomers())
	assert.Equal(t, []CustomerRow{
		{Name: "Contoso", Address: "Customers!A2:E2"},
		{Name: "Fabrikam", Address: "Customers!A3:E3"},
	}, rows)
}

func TestSerialConversions(t *testing.T) {
	tests := []struct {
		name   string
		date   *date.Date
		serial float64
	}{
		{"first day", &date.Date{Year: 1900, Month: 1, Day: 1}, 1},
		{"before phantom leap day", &date.Date{Year: 1900, Month: 2, Day: 28}, 59},
		{"after phantom leap day", &date.Date{Year: 1900, Month: 3, Day: 1}, 61},
		{"modern", &date.Date{Year: 2018, Month: 1, Day: 1}, 43101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.serial, SerialFromDate(tt.date))
			got, ok := DateFromSerial(tt.serial)
			require.True(t, ok)
			assert.Equal(t, tt.date.GetYear(), got.GetYear())
			assert.Equal(t, tt.date.GetMonth(), got.GetMonth())
			assert.Equal(t, tt.date.GetDay(), got.GetDay())
		})
	}

	_, ok := DateFromSerial(60)
	assert.False(t, ok)
	_, ok = DateFromSerial(0)
	assert.False(t, ok)

	got, ok := DateFromSerial(43101.75)
	require.True(t, ok)
	assert.Equal(t, int32(2018), got.GetYear())
}

func TestDecodeLeads(t *testing.T) {
	input := `[
		{"Owner":"Jane Doe","Account":"Contoso","Topic":"Servers","Probability":0.4,"EstCloseDate":43101,"EstRevenue":1000},
		{"Owner":"Bob","Account":"Fabrikam","Topic":"Laptops","Probability":"40%","EstCloseDate":"1/1/2018","EstRevenue":"$1,000.50"},
		{"Owner":"Bob","Account":"Fabrikam","Topic":"Desks","Probability":0.1,"EstCloseDate":"2018-01-02","EstRevenue":null}
	]`
	got, err := DecodeLeads(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, float64(43101), got[0].EstCloseDate)
	assert.InDelta(t, 0.4, got[1].Probability, 1e-9)
	assert.Equal(t, float64(43101), got[1].EstCloseDate)
	assert.InDelta(t, 1000.5, got[1].EstRevenue, 1e-9)
	assert.Equal(t, float64(43102), got[2].EstCloseDate)
	assert.Zero(t, got[2].EstRevenue)
}

func TestDecodeLeads_Invalid(t *testing.T) {
	tests := []string{
		`{"Owner":"x"}`,
		`[{"Owner":"","EstCloseDate":1}]`,
		`[{"Owner":"a","EstCloseDate":"someday"}]`,
		`[{"Owner":"a","EstCloseDate":43000,"Probability":250}]`,
		`[{"Owner":"a","Probability":0.1}]`,
	}
	for _, input := range tests {
		_, err := DecodeLeads(strings.NewReader(input))
		assert.ErrorIs(t, err, ErrInvalidData, input)
	}
}

func TestDecodeCustomers(t *testing.T) {
	got, err := DecodeCustomers(strings.NewReader(`[{"Name":"Contoso","Phone":"1","City":"Seattle","PrimaryContact":"Ann","Email":"a@b"}]`))
	require.NoError(t, err)
	assert.Equal(t, "Ann", got[0].PrimaryContact)

	_, err = DecodeCustomers(strings.NewReader(`[{"Phone":"1"}]`))
	assert.ErrorIs(t, err, ErrInvalidData)
}
