package proposaldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"spotmerge.hitchmap.org/internal/models"
)

// GetRedirect returns the direct redirect target for fromID, if any.
func (c *Client) GetRedirect(ctx context.Context, fromID string) (string, bool, error) {
	var toID string
	err := c.DB.QueryRowContext(ctx, `SELECT to_id FROM redirects WHERE from_id = ?`, fromID).Scan(&toID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("loading redirect for %s: %w", fromID, err)
	}
	return toID, true, nil
}

// PutRedirect records a permanent absorbed-to-survivor mapping. Redirects
// are never updated or deleted.
func (c *Client) PutRedirect(ctx context.Context, entry models.RedirectEntry) error {
	_, err := c.DB.ExecContext(ctx,
		`INSERT INTO redirects (from_id, to_id, created_at) VALUES (?, ?, ?)`,
		entry.FromID, entry.ToID, timeToMillis(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("writing redirect %s -> %s: %w", entry.FromID, entry.ToID, err)
	}
	return nil
}

// AppendHistory appends an immutable merge history record. Spot snapshots
// are stored as JSON; they are audit payloads, never queried field by field.
func (c *Client) AppendHistory(ctx context.Context, rec models.MergeHistoryRecord) error {
	survivorJSON, err := json.Marshal(rec.Survivor)
	if err != nil {
		return fmt.Errorf("encoding survivor snapshot: %w", err)
	}
	absorbedJSON, err := json.Marshal(rec.Absorbed)
	if err != nil {
		return fmt.Errorf("encoding absorbed snapshot: %w", err)
	}
	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("encoding result snapshot: %w", err)
	}

	_, err = c.DB.ExecContext(ctx, `
INSERT INTO merge_history (id, proposal_id, survivor_id, absorbed_id, survivor_json, absorbed_json, result_json, merged_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ProposalID, rec.SurvivorID, rec.AbsorbedID,
		string(survivorJSON), string(absorbedJSON), string(resultJSON),
		timeToMillis(rec.MergedAt),
	)
	if err != nil {
		return fmt.Errorf("appending merge history %s: %w", rec.ID, err)
	}
	return nil
}

// ListHistory returns merge history records in append order.
func (c *Client) ListHistory(ctx context.Context) ([]models.MergeHistoryRecord, error) {
	rows, err := c.DB.QueryContext(ctx, `
SELECT id, proposal_id, survivor_id, absorbed_id, survivor_json, absorbed_json, result_json, merged_at
FROM merge_history ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing merge history: %w", err)
	}
	defer rows.Close()

	out := []models.MergeHistoryRecord{}
	for rows.Next() {
		var rec models.MergeHistoryRecord
		var survivorJSON, absorbedJSON, resultJSON string
		var mergedAt int64
		if err := rows.Scan(&rec.ID, &rec.ProposalID, &rec.SurvivorID, &rec.AbsorbedID,
			&survivorJSON, &absorbedJSON, &resultJSON, &mergedAt); err != nil {
			return nil, fmt.Errorf("scanning merge history: %w", err)
		}
		if err := json.Unmarshal([]byte(survivorJSON), &rec.Survivor); err != nil {
			return nil, fmt.Errorf("decoding survivor snapshot for %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(absorbedJSON), &rec.Absorbed); err != nil {
			return nil, fmt.Errorf("decoding absorbed snapshot for %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
			return nil, fmt.Errorf("decoding result snapshot for %s: %w", rec.ID, err)
		}
		rec.MergedAt = millisToTime(mergedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}
