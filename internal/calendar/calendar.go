// Package calendar holds the date arithmetic behind the production month view.
package calendar

import "time"

// MonthBounds returns the first and last day of the month at UTC midnight
func MonthBounds(year int, month time.Month) (first, last time.Time) {
	first = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last = first.AddDate(0, 1, -1)
	return first, last
}

// DaysIn returns the number of days in the month
func DaysIn(year int, month time.Month) int {
	_, last := MonthBounds(year, month)
	return last.Day()
}

// Prev returns the month before, wrapping January to December of the previous year
func Prev(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// Next returns the month after, wrapping December to January of the next year
func Next(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// MonthGrid lays the month out in rows of seven day numbers starting on
// weekStart. Cells outside the month are 0. Every day appears exactly once.
func MonthGrid(year int, month time.Month, weekStart time.Weekday) [][]int {
	first, _ := MonthBounds(year, month)
	days := DaysIn(year, month)
	lead := (int(first.Weekday()) - int(weekStart) + 7) % 7

	cells := lead + days
	if rem := cells % 7; rem != 0 {
		cells += 7 - rem
	}

	weeks := make([][]int, 0, cells/7)
	for row := 0; row < cells/7; row++ {
		week := make([]int, 7)
		for col := 0; col < 7; col++ {
			day := row*7 + col - lead + 1
			if day >= 1 && day <= days {
				week[col] = day
			}
		}
		weeks = append(weeks, week)
	}
	return weeks
}
