// Package cellvalue builds Excel data-type cell values (entity cards,
// formatted numbers, arrays) in the JSON shape the Excel JavaScript API
// accepts for Range.valuesAsJson.
//
// See https://learn.microsoft.com/en-us/javascript/api/excel/excel.cellvalue
package cellvalue

import (
	"encoding/json"

	"salesleads/internal/leads"

	"google.golang.org/genproto/googleapis/type/date"
)

// CellValue is any value that can be written into a cell.
type CellValue interface {
	ToJSON() ([]byte, error)
}

type basicValue struct {
	Type  string `json:"type"`
	Value any    `json:"basicValue"`
}

func (b basicValue) ToJSON() ([]byte, error) { return json.Marshal(b) }

func String(s string) CellValue  { return basicValue{Type: "String", Value: s} }
func Double(v float64) CellValue { return basicValue{Type: "Double", Value: v} }
func Bool(v bool) CellValue      { return basicValue{Type: "Boolean", Value: v} }

type formattedNumber struct {
	Type         string  `json:"type"`
	Value        float64 `json:"basicValue"`
	NumberFormat string  `json:"numberFormat"`
}

func (f formattedNumber) ToJSON() ([]byte, error) { return json.Marshal(f) }

// FormattedNumber renders v with an Excel number format such as "$#,##0.00".
func FormattedNumber(v float64, format string) CellValue {
	return formattedNumber{Type: "FormattedNumber", Value: v, NumberFormat: format}
}

// Date renders a calendar date as a formatted date serial, e.g. "m/d/yyyy".
func Date(d *date.Date, format string) CellValue {
	return formattedNumber{Type: "FormattedNumber", Value: leads.SerialFromDate(d), NumberFormat: format}
}

type arrayValue struct {
	Type     string        `json:"type"`
	Elements [][]CellValue `json:"elements"`
}

func (a arrayValue) ToJSON() ([]byte, error) { return json.Marshal(a) }

func Array(rows [][]CellValue) CellValue {
	return arrayValue{Type: "Array", Elements: rows}
}

// Layouts controls how an entity is shown compactly and as a card.
type Layouts struct {
	Compact *Compact `json:"compact,omitempty"`
	Card    *Card    `json:"card,omitempty"`
}

type Compact struct {
	Icon string `json:"icon,omitempty"`
}

type Card struct {
	Title    *CardProperty `json:"title,omitempty"`
	SubTitle *CardProperty `json:"subTitle,omitempty"`
	Sections []Section     `json:"sections,omitempty"`
}

type CardProperty struct {
	Property string `json:"property,omitempty"`
}

type Section struct {
	Layout     string   `json:"layout,omitempty"`
	Properties []string `json:"properties,omitempty"`
	Title      *string  `json:"title,omitempty"`
}

type Provider struct {
	Description       string `json:"description,omitempty"`
	LogoSourceAddress string `json:"logoSourceAddress,omitempty"`
	LogoTargetAddress string `json:"logoTargetAddress,omitempty"`
}

type entity struct {
	Type       string               `json:"type"`
	Text       string               `json:"text"`
	Properties map[string]CellValue `json:"properties,omitempty"`
	Layouts    *Layouts             `json:"layouts,omitempty"`
	Provider   *Provider            `json:"provider,omitempty"`
}

func (e entity) ToJSON() ([]byte, error) { return json.Marshal(e) }

// Entity builds an entity card showing text in the cell.
func Entity(text string, properties map[string]CellValue, layouts *Layouts, provider *Provider) CellValue {
	return entity{
		Type:       "Entity",
		Text:       text,
		Properties: properties,
		Layouts:    layouts,
		Provider:   provider,
	}
}
