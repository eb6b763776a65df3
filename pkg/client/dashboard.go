package client

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/medsched/medsched/pkg/domain"
)

// DashboardMetrics fetches the dashboard payload, optionally narrowed to
// a date window.
func (c *Client) DashboardMetrics(ctx context.Context, from, to string) (*domain.DashboardMetrics, error) {
	query := url.Values{}
	if from != "" {
		query.Set("from", from)
	}
	if to != "" {
		query.Set("to", to)
	}
	var metrics domain.DashboardMetrics
	if err := c.get(ctx, "/dashboard/metrics", query, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

// ExportAppointmentsCSV downloads the appointments export and returns
// its raw content.
func (c *Client) ExportAppointmentsCSV(ctx context.Context) ([]byte, error) {
	resp, err := c.roundTrip(ctx, http.MethodGet, "/export/appointments.csv", nil, nil, true)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, readAPIError(resp)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
