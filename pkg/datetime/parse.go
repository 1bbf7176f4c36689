// Package datetime provides date utility functions for facility dating.
package datetime

import (
	"time"

	"github.com/lenderkit/covsim/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in deal files and is also the
	// output date format.
	DateTimeLayout = constants.DateTimeLayout
)

// AddYears returns the string-formatted date offset by the given number of
// years. Tranche maturities are drawdown date plus tenor.
func AddYears(date string, years int) (string, error) {
	t, err := time.Parse(DateTimeLayout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(years, 0, 0).Format(DateTimeLayout), nil
}

// DateBeforeDate returns true if firstDate is strictly before secondDate.
func DateBeforeDate(firstDate string, secondDate string) (bool, error) {
	firstDateT, err := time.Parse(DateTimeLayout, firstDate)
	if err != nil {
		return false, err
	}
	secondDateT, err := time.Parse(DateTimeLayout, secondDate)
	if err != nil {
		return false, err
	}
	return firstDateT.Before(secondDateT), nil
}
