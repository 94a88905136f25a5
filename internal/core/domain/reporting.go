package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionFilter narrows a history listing. Zero values mean "no filter".
type TransactionFilter struct {
	Direction Direction
	Status    TransactionStatus
	Service   string
	From      *time.Time
	To        *time.Time
}

// TransactionStats summarises a user's ledger over a period.
type TransactionStats struct {
	TotalCredited  decimal.Decimal            `json:"totalCredited"`
	TotalDebited   decimal.Decimal            `json:"totalDebited"`
	CountsByStatus map[TransactionStatus]int  `json:"countsByStatus"`
	DebitByService map[string]decimal.Decimal `json:"debitByService"`
}

// TrendPoint is one day of completed credit and debit totals.
type TrendPoint struct {
	Day      time.Time       `json:"day"`
	Credited decimal.Decimal `json:"credited"`
	Debited  decimal.Decimal `json:"debited"`
}

// NewTransactionStats returns stats with zeroed totals and initialised maps.
func NewTransactionStats() TransactionStats {
	return TransactionStats{
		TotalCredited:  decimal.Zero,
		TotalDebited:   decimal.Zero,
		CountsByStatus: map[TransactionStatus]int{},
		DebitByService: map[string]decimal.Decimal{},
	}
}

// Add folds one transaction into the stats.
func (s *TransactionStats) Add(t Transaction) {
	s.CountsByStatus[t.Status]++
	if t.Status != StatusCompleted {
		return
	}
	if t.Direction == Credit {
		s.TotalCredited = s.TotalCredited.Add(t.Amount)
		return
	}
	s.TotalDebited = s.TotalDebited.Add(t.Amount)
	s.DebitByService[t.Service] = s.DebitByService[t.Service].Add(t.Amount)
}

// BuildTrend buckets completed transactions per UTC day between from and to (inclusive), zero filling gaps.
func BuildTrend(txns []Transaction, from, to time.Time) []TrendPoint {
	start := truncateDay(from)
	end := truncateDay(to)
	if end.Before(start) {
		return []TrendPoint{}
	}
	index := map[time.Time]int{}
	points := []TrendPoint{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		index[d] = len(points)
		points = append(points, TrendPoint{Day: d, Credited: decimal.Zero, Debited: decimal.Zero})
	}
	for _, t := range txns {
		if t.Status != StatusCompleted {
			continue
		}
		i, ok := index[truncateDay(t.CreatedAt)]
		if !ok {
			continue
		}
		if t.Direction == Credit {
			points[i].Credited = points[i].Credited.Add(t.Amount)
		} else {
			points[i].Debited = points[i].Debited.Add(t.Amount)
		}
	}
	return points
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
