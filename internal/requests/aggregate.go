package requests

import (
	"context"

	"github.com/khadamati/khadamati/internal/domain"
	"github.com/montanaflynn/stats"
)

// DashboardRecent is how many recent requests a dashboard shows.
const DashboardRecent = 5

// Aggregator computes read-only views over the store. Nothing it returns is
// cached; every call reads current data.
type Aggregator struct {
	store Store
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// RequestsForCustomer returns the customer's requests, most recent first.
func (a *Aggregator) RequestsForCustomer(ctx context.Context, customerID int64) ([]*domain.ServiceRequest, error) {
	return a.store.List(ctx, Filter{CustomerID: customerID})
}

// RequestsForProvider returns the requests addressed to the provider, most recent first.
func (a *Aggregator) RequestsForProvider(ctx context.Context, providerID int64) ([]*domain.ServiceRequest, error) {
	return a.store.List(ctx, Filter{ProviderID: providerID})
}

// ProviderEarnings sums the price of the provider's completed requests.
func (a *Aggregator) ProviderEarnings(ctx context.Context, providerID int64) (float64, error) {
	rows, err := a.store.List(ctx, Filter{ProviderID: providerID, Status: domain.StatusCompleted})
	if err != nil {
		return 0, err
	}
	return SumPrices(rows), nil
}

// CustomerDashboard is the customer's home view.
type CustomerDashboard struct {
	Total  int                          `json:"total"`
	Counts map[domain.RequestStatus]int `json:"counts"`
	Recent []*domain.ServiceRequest     `json:"recent"`
}

func (a *Aggregator) CustomerDashboard(ctx context.Context, customerID int64) (*CustomerDashboard, error) {
	rows, err := a.RequestsForCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &CustomerDashboard{
		Total:  len(rows),
		Counts: StatusCounts(rows),
		Recent: TopNRecent(rows, DashboardRecent),
	}, nil
}

// ProviderDashboard is the provider's home view.
type ProviderDashboard struct {
	Total          int                          `json:"total"`
	Earnings       float64                      `json:"earnings"`
	AveragePrice   float64                      `json:"average_price"` // over completed requests
	CompletionRate float64                      `json:"completion_rate"`
	Counts         map[domain.RequestStatus]int `json:"counts"`
	Recent         []*domain.ServiceRequest     `json:"recent"`
}

func (a *Aggregator) ProviderDashboard(ctx context.Context, providerID int64) (*ProviderDashboard, error) {
	rows, err := a.RequestsForProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	completed := make([]*domain.ServiceRequest, 0, len(rows))
	for _, r := range rows {
		if r.Status == domain.StatusCompleted {
			completed = append(completed, r)
		}
	}
	dash := &ProviderDashboard{
		Total:    len(rows),
		Earnings: SumPrices(completed),
		Counts:   StatusCounts(rows),
		Recent:   TopNRecent(rows, DashboardRecent),
	}
	if len(completed) > 0 {
		dash.AveragePrice, _ = stats.Mean(prices(completed))
	}
	if len(rows) > 0 {
		dash.CompletionRate = float64(len(completed)) / float64(len(rows))
	}
	return dash, nil
}

// StatusCounts tallies requests per status. Every status has an entry.
func StatusCounts(rows []*domain.ServiceRequest) map[domain.RequestStatus]int {
	counts := make(map[domain.RequestStatus]int, len(domain.AllStatuses))
	for _, st := range domain.AllStatuses {
		counts[st] = 0
	}
	for _, r := range rows {
		counts[r.Status]++
	}
	return counts
}

// TopNRecent returns the first n entries of a most-recent-first list.
// It returns fewer when the list is shorter and none when n <= 0.
func TopNRecent(rows []*domain.ServiceRequest, n int) []*domain.ServiceRequest {
	if n <= 0 {
		return []*domain.ServiceRequest{}
	}
	if n > len(rows) {
		n = len(rows)
	}
	out := make([]*domain.ServiceRequest, n)
	copy(out, rows[:n])
	return out
}

// SumPrices adds up the prices of rows; an empty list sums to 0.
func SumPrices(rows []*domain.ServiceRequest) float64 {
	if len(rows) == 0 {
		return 0
	}
	sum, err := stats.Sum(prices(rows))
	if err != nil {
		return 0
	}
	return sum
}

func prices(rows []*domain.ServiceRequest) stats.Float64Data {
	data := make(stats.Float64Data, 0, len(rows))
	for _, r := range rows {
		data = append(data, r.Price)
	}
	return data
}
