package store

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the timestamp format stored in the attempt log. It sorts
// lexicographically and SQLite's datetime functions understand it.
const TimeLayout = "2006-01-02 15:04:05"

// maskedPassword replaces the real credential in persisted records.
const maskedPassword = "******"

// Attempt is one persisted login attempt. The password column always
// holds a mask, never the credential itself.
type Attempt struct {
	ID              int64  `json:"id"`
	Timestamp       string `json:"timestamp"`
	NetworkName     string `json:"network_name"`
	NetworkSSID     string `json:"network_ssid"`
	Username        string `json:"username"`
	SessionToken    string `json:"a"`
	ResponseStatus  string `json:"response_status"`
	ResponseMessage string `json:"response_message"`
}

// Filter narrows ListAttempts results. Zero values mean "no constraint";
// a zero Limit defaults to 50.
type Filter struct {
	Limit     int
	Network   string
	Status    string // "success", "failed" or empty
	StartDate string
	EndDate   string
}

// InsertAttempt appends one attempt record at the given time.
func (db *DB) InsertAttempt(at time.Time, a *Attempt) error {
	_, err := db.Exec(`
		INSERT INTO login_attempts (timestamp, network_name, network_ssid, username, password, a, response_status, response_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		at.Format(TimeLayout), a.NetworkName, a.NetworkSSID, a.Username,
		maskedPassword, a.SessionToken, a.ResponseStatus, a.ResponseMessage)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// ListAttempts returns attempts newest-first, narrowed by f.
func (db *DB) ListAttempts(f Filter) ([]Attempt, error) {
	var (
		conds []string
		args  []any
	)
	if f.StartDate != "" {
		conds = append(conds, "timestamp >= ?")
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		conds = append(conds, "timestamp <= ?")
		args = append(args, f.EndDate)
	}
	switch f.Status {
	case "success":
		conds = append(conds, "response_status = '200'")
	case "failed":
		conds = append(conds, "response_status != '200'")
	}
	if f.Network != "" {
		conds = append(conds, "network_name = ?")
		args = append(args, f.Network)
	}

	query := `
		SELECT id, timestamp, network_name, network_ssid, username, a, response_status, response_message
		FROM login_attempts`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.Timestamp, &a.NetworkName, &a.NetworkSSID,
			&a.Username, &a.SessionToken, &a.ResponseStatus, &a.ResponseMessage); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// ClearAttempts deletes the whole attempt log.
func (db *DB) ClearAttempts() error {
	if _, err := db.Exec("DELETE FROM login_attempts"); err != nil {
		return fmt.Errorf("clear attempts: %w", err)
	}
	return nil
}
