package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/yurifrl/xtbpp/pkg/csv"
	"github.com/yurifrl/xtbpp/pkg/models"
)

const filterDateLayout = "2006-01-02"

type filters struct {
	startDate string
	endDate   string
	types     []string
	ticker    string
}

func (f *filters) empty() bool {
	return f.startDate == "" && f.endDate == "" && len(f.types) == 0 && f.ticker == ""
}

func (f *filters) toFilterFunc() (csv.FilterFunc, error) {
	if f.empty() {
		return nil, nil
	}

	var start, end time.Time
	var err error
	if f.startDate != "" {
		if start, err = time.Parse(filterDateLayout, f.startDate); err != nil {
			return nil, fmt.Errorf("invalid --start: %w", err)
		}
	}
	if f.endDate != "" {
		if end, err = time.Parse(filterDateLayout, f.endDate); err != nil {
			return nil, fmt.Errorf("invalid --end: %w", err)
		}
		// inclusive
		end = end.AddDate(0, 0, 1)
	}
	types := lo.Map(f.types, func(t string, _ int) string { return strings.ToLower(strings.TrimSpace(t)) })

	return func(r models.Record) bool {
		if !start.IsZero() && r.Date.Before(start) {
			return false
		}
		if !end.IsZero() && !r.Date.Before(end) {
			return false
		}
		if len(types) > 0 && !lo.Contains(types, strings.ToLower(string(r.OperationType))) {
			return false
		}
		if f.ticker != "" && !strings.EqualFold(r.TickerSymbol, f.ticker) {
			return false
		}
		return true
	}, nil
}
