// Package calendar loads a fixed list of company holidays from YAML. Holiday
// dates are excluded from every analysis window in addition to the dates a
// caller passes per request.
//
// File format:
//
//	holidays:
//	  - date: 2025-12-25
//	    name: Christmas Day
//	  - date: 2026-01-01
//	    name: New Year's Day
package calendar

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/punchaudit/punchaudit-backend/internal/audit/domain"
)

// Holiday is one calendar entry.
type Holiday struct {
	Date domain.Date `json:"date"`
	Name string      `json:"name"`
}

// Calendar is a sorted, de-duplicated set of holidays.
type Calendar struct {
	holidays []Holiday
}

type file struct {
	Holidays []struct {
		Date string `yaml:"date"`
		Name string `yaml:"name"`
	} `yaml:"holidays"`
}

// Empty returns a calendar without holidays.
func Empty() *Calendar {
	return &Calendar{}
}

// LoadFile reads a calendar from path. An empty path gives an empty calendar.
func LoadFile(path string) (*Calendar, error) {
	if path == "" {
		return Empty(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open holiday calendar: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a calendar document.
func Load(r io.Reader) (*Calendar, error) {
	var doc file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse holiday calendar: %w", err)
	}

	seen := make(map[domain.Date]bool, len(doc.Holidays))
	c := &Calendar{}
	for i, h := range doc.Holidays {
		d, err := domain.ParseDate(h.Date)
		if err != nil {
			return nil, fmt.Errorf("holiday %d: %w", i+1, err)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		c.holidays = append(c.holidays, Holiday{Date: d, Name: h.Name})
	}

	sort.Slice(c.holidays, func(i, j int) bool { return c.holidays[i].Date.Before(c.holidays[j].Date) })
	return c, nil
}

// Holidays returns a copy of all entries in date order.
func (c *Calendar) Holidays() []Holiday {
	return append([]Holiday(nil), c.holidays...)
}

// Between returns the holiday dates within [start, end].
func (c *Calendar) Between(start, end domain.Date) []domain.Date {
	var out []domain.Date
	for _, h := range c.holidays {
		if h.Date.Before(start) || h.Date.After(end) {
			continue
		}
		out = append(out, h.Date)
	}
	return out
}
