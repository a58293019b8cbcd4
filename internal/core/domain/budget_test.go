package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/fireledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBudgetLimit_Overlaps(t *testing.T) {
	start, end := day("2024-01-01"), day("2024-01-31")
	tests := []struct {
		name       string
		limitStart string
		limitEnd   string
		want       bool
	}{
		{"exact", "2024-01-01", "2024-01-31", true},
		{"ends inside", "2023-12-15", "2024-01-10", true},
		{"starts inside", "2024-01-20", "2024-02-20", true},
		{"spans range", "2023-12-01", "2024-02-29", true},
		{"before", "2023-12-01", "2023-12-31", false},
		{"after", "2024-02-01", "2024-02-29", false},
		{"touches last day", "2024-01-31", "2024-02-29", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := domain.BudgetLimit{StartDate: day(tt.limitStart), EndDate: day(tt.limitEnd)}
			assert.Equal(t, tt.want, l.Overlaps(start, end))
		})
	}
}

func TestBudgetLimit_MatchesAndKey(t *testing.T) {
	l := domain.BudgetLimit{BudgetID: "b1", StartDate: day("2024-01-01"), EndDate: day("2024-01-31")}
	assert.True(t, l.Matches(day("2024-01-01"), day("2024-01-31").Add(13*time.Hour)))
	assert.False(t, l.Matches(day("2024-01-02"), day("2024-01-31")))
	assert.Equal(t, "b1|2024-01-01|2024-01-31", l.PeriodKey())
	assert.Equal(t, int64(30), l.Days())
}

func TestPiggyBankRepetition_Covers(t *testing.T) {
	start, target := day("2024-01-01"), day("2024-06-30")
	r := domain.PiggyBankRepetition{StartDate: &start, TargetDate: &target}
	assert.True(t, r.Covers(day("2024-03-01")))
	assert.False(t, r.Covers(day("2023-12-31")))
	assert.False(t, r.Covers(day("2024-07-01")))
	assert.True(t, domain.PiggyBankRepetition{}.Covers(day("1999-01-01")))
}
