package store

import (
	"database/sql"
	"fmt"
	"math"
	"time"
)

// Stats summarizes the whole attempt log. An HTTP 200 from the portal
// counts as success.
type Stats struct {
	TotalAttempts      int     `json:"total_attempts"`
	SuccessfulAttempts int     `json:"successful_attempts"`
	FailedAttempts     int     `json:"failed_attempts"`
	SuccessRate        float64 `json:"success_rate"`
	LastAttempt        string  `json:"last_attempt,omitempty"`
}

// NetworkStats summarizes attempts for one network profile.
type NetworkStats struct {
	NetworkName        string  `json:"network_name"`
	NetworkSSID        string  `json:"network_ssid"`
	TotalAttempts      int     `json:"total_attempts"`
	SuccessfulAttempts int     `json:"successful_attempts"`
	FailedAttempts     int     `json:"failed_attempts"`
	SuccessRate        float64 `json:"success_rate"`
	LastAttempt        string  `json:"last_attempt"`
}

// HourlyStats counts attempts in one hour bucket ("YYYY-MM-DD HH").
type HourlyStats struct {
	Hour               string `json:"hour"`
	TotalAttempts      int    `json:"total_attempts"`
	SuccessfulAttempts int    `json:"successful_attempts"`
	FailedAttempts     int    `json:"failed_attempts"`
}

// GetStats returns overall attempt statistics.
func (db *DB) GetStats() (*Stats, error) {
	var s Stats
	err := db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN response_status = '200' THEN 1 ELSE 0 END), 0)
		FROM login_attempts`).Scan(&s.TotalAttempts, &s.SuccessfulAttempts)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	s.FailedAttempts = s.TotalAttempts - s.SuccessfulAttempts
	s.SuccessRate = rate(s.SuccessfulAttempts, s.TotalAttempts)

	var last sql.NullString
	err = db.QueryRow(`
		SELECT timestamp FROM login_attempts ORDER BY timestamp DESC, id DESC LIMIT 1`).Scan(&last)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("stats: last attempt: %w", err)
	}
	if last.Valid {
		s.LastAttempt = last.String
	}
	return &s, nil
}

// GetNetworkStats returns per-profile statistics, busiest profile first.
func (db *DB) GetNetworkStats() ([]NetworkStats, error) {
	rows, err := db.Query(`
		SELECT network_name, network_ssid, COUNT(*),
		       SUM(CASE WHEN response_status = '200' THEN 1 ELSE 0 END),
		       MAX(timestamp)
		FROM login_attempts
		WHERE network_name IS NOT NULL AND network_name != ''
		GROUP BY network_name, network_ssid
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("network stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []NetworkStats
	for rows.Next() {
		var ns NetworkStats
		if err := rows.Scan(&ns.NetworkName, &ns.NetworkSSID, &ns.TotalAttempts,
			&ns.SuccessfulAttempts, &ns.LastAttempt); err != nil {
			return nil, err
		}
		ns.FailedAttempts = ns.TotalAttempts - ns.SuccessfulAttempts
		ns.SuccessRate = rate(ns.SuccessfulAttempts, ns.TotalAttempts)
		stats = append(stats, ns)
	}
	return stats, rows.Err()
}

// GetHourlyStats buckets attempts per hour over the last days days.
func (db *DB) GetHourlyStats(days int) ([]HourlyStats, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days).Format(TimeLayout)

	rows, err := db.Query(`
		SELECT strftime('%Y-%m-%d %H', timestamp),
		       COUNT(*),
		       SUM(CASE WHEN response_status = '200' THEN 1 ELSE 0 END)
		FROM login_attempts
		WHERE timestamp >= ?
		GROUP BY strftime('%Y-%m-%d %H', timestamp)
		ORDER BY 1`, since)
	if err != nil {
		return nil, fmt.Errorf("hourly stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []HourlyStats
	for rows.Next() {
		var hs HourlyStats
		if err := rows.Scan(&hs.Hour, &hs.TotalAttempts, &hs.SuccessfulAttempts); err != nil {
			return nil, err
		}
		hs.FailedAttempts = hs.TotalAttempts - hs.SuccessfulAttempts
		stats = append(stats, hs)
	}
	return stats, rows.Err()
}

// rate returns the success percentage rounded to two decimals.
func rate(successful, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(successful)/float64(total)*10000) / 100
}
