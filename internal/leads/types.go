// Package leads holds the sales-lead domain: the customer and opportunity
// records imported from Dynamics, and the per-salesperson analysis built
// from them.
package leads

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidData   = errors.New("leads: invalid data")
	ErrNoSalesperson = errors.New("leads: no salesperson selected")
	ErrSessionUsed   = errors.New("leads: session already analyzed")
)

// Customer is one row of the Customers table.
type Customer struct {
	Name           string `json:"Name"`
	Phone          string `json:"Phone"`
	City           string `json:"City"`
	PrimaryContact string `json:"PrimaryContact"`
	Email          string `json:"Email"`
}

// Lead is one sales opportunity. EstCloseDate is an Excel date serial.
type Lead struct {
	Owner        string  `json:"Owner"`
	Account      string  `json:"Account"`
	Topic        string  `json:"Topic"`
	Probability  float64 `json:"Probability"`
	EstCloseDate float64 `json:"EstCloseDate"`
	EstRevenue   float64 `json:"EstRevenue"`
}

// rawLead accepts the loosely typed values found in exported Dynamics data:
// numbers may arrive as strings and close dates as either serials or dates.
type rawLead struct {
	Owner        string          `json:"Owner"`
	Account      string          `json:"Account"`
	Topic        string          `json:"Topic"`
	Probability  json.RawMessage `json:"Probability"`
	EstCloseDate json.RawMessage `json:"EstCloseDate"`
	EstRevenue   json.RawMessage `json:"EstRevenue"`
}

var closeDateLayouts = []string{
	"1/2/2006",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// DecodeCustomers reads a JSON array of customers.
func DecodeCustomers(r io.Reader) ([]Customer, error) {
	var customers []Customer
	if err := json.NewDecoder(r).Decode(&customers); err != nil {
		return nil, fmt.Errorf("%w: decode customers: %v", ErrInvalidData, err)
	}
	for i, c := range customers {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("%w: customer %d has no name", ErrInvalidData, i)
		}
	}
	return customers, nil
}

// DecodeLeads reads a JSON array of sales leads.
func DecodeLeads(r io.Reader) ([]Lead, error) {
	var raws []rawLead
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, fmt.Errorf("%w: decode leads: %v", ErrInvalidData, err)
	}

	out := make([]Lead, 0, len(raws))
	for i, raw := range raws {
		lead, err := raw.toLead()
		if err != nil {
			return nil, fmt.Errorf("%w: lead %d: %v", ErrInvalidData, i, err)
		}
		out = append(out, lead)
	}
	return out, nil
}

func (r rawLead) toLead() (Lead, error) {
	owner := strings.TrimSpace(r.Owner)
	if owner == "" {
		return Lead{}, fmt.Errorf("owner required")
	}
	probability, err := parseNumber(r.Probability)
	if err != nil {
		return Lead{}, fmt.Errorf("probability: %w", err)
	}
	if probability > 1 && probability <= 100 {
		probability /= 100
	}
	if probability < 0 || probability > 1 {
		return Lead{}, fmt.Errorf("probability %v out of range", probability)
	}
	revenue, err := parseNumber(r.EstRevenue)
	if err != nil {
		return Lead{}, fmt.Errorf("revenue: %w", err)
	}
	closeDate, err := parseCloseDate(r.EstCloseDate)
	if err != nil {
		return Lead{}, fmt.Errorf("close date: %w", err)
	}
	return Lead{
		Owner:        owner,
		Account:      strings.TrimSpace(r.Account),
		Topic:        strings.TrimSpace(r.Topic),
		Probability:  probability,
		EstCloseDate: closeDate,
		EstRevenue:   revenue,
	}, nil
}

func parseNumber(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("not a number: %s", raw)
	}
	s = strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseCloseDate(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("missing")
	}
	var serial float64
	if err := json.Unmarshal(raw, &serial); err == nil {
		return serial, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("unsupported value %s", raw)
	}
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	for _, layout := range closeDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return SerialFromTime(t), nil
		}
	}
	return 0, fmt.Errorf("unrecognized date %q", s)
}
