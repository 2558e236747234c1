package proposaldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"spotmerge.hitchmap.org/internal/models"
	"spotmerge.hitchmap.org/internal/store"
)

// CommitMerge applies the survivor rewrite, the absorbed removal, the
// redirect, the history record, and the optional proposal transition in one
// transaction. A failure at any step rolls the whole commit back.
func (c *Client) CommitMerge(ctx context.Context, commit store.MergeCommit) error {
	args, err := spotArgs(commit.Survivor)
	if err != nil {
		return err
	}
	survivorJSON, err := json.Marshal(commit.History.Survivor)
	if err != nil {
		return fmt.Errorf("encoding survivor snapshot: %w", err)
	}
	absorbedJSON, err := json.Marshal(commit.History.Absorbed)
	if err != nil {
		return fmt.Errorf("encoding absorbed snapshot: %w", err)
	}
	resultJSON, err := json.Marshal(commit.History.Result)
	if err != nil {
		return fmt.Errorf("encoding result snapshot: %w", err)
	}

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE spots SET lat = ?, lon = ?, origin_label = ?, destination_label = ?, ratings_json = ?,
    review_count = ?, description = ?, photo_url = ?, checkin_count = ?, created_at = ?,
    last_used_at = ?, verified = ?, region = ?, source = ?
WHERE id = ?`, append(args[1:], commit.SurvivorID)...)
	if err != nil {
		return fmt.Errorf("replacing spot %s: %w", commit.SurvivorID, err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("replacing spot %s: %w", commit.SurvivorID, err)
	} else if affected == 0 {
		return models.ErrSpotNotFound
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM spots WHERE id = ?`, commit.AbsorbedID)
	if err != nil {
		return fmt.Errorf("removing spot %s: %w", commit.AbsorbedID, err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("removing spot %s: %w", commit.AbsorbedID, err)
	} else if affected == 0 {
		return models.ErrSpotNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO redirects (from_id, to_id, created_at) VALUES (?, ?, ?)`,
		commit.Redirect.FromID, commit.Redirect.ToID, timeToMillis(commit.Redirect.CreatedAt),
	); err != nil {
		return fmt.Errorf("writing redirect %s -> %s: %w", commit.Redirect.FromID, commit.Redirect.ToID, err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO merge_history (id, proposal_id, survivor_id, absorbed_id, survivor_json, absorbed_json, result_json, merged_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		commit.History.ID, commit.History.ProposalID, commit.History.SurvivorID, commit.History.AbsorbedID,
		string(survivorJSON), string(absorbedJSON), string(resultJSON),
		timeToMillis(commit.History.MergedAt),
	); err != nil {
		return fmt.Errorf("appending merge history %s: %w", commit.History.ID, err)
	}

	if commit.ProposalID != "" {
		res, err := tx.ExecContext(ctx,
			`UPDATE proposals SET status = ? WHERE id = ? AND status = ?`,
			string(models.StatusExecuted), commit.ProposalID, string(models.StatusApproved),
		)
		if err != nil {
			return fmt.Errorf("updating proposal %s: %w", commit.ProposalID, err)
		}
		if affected, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("updating proposal %s: %w", commit.ProposalID, err)
		} else if affected == 0 {
			err := tx.QueryRowContext(ctx, `SELECT 1 FROM proposals WHERE id = ?`, commit.ProposalID).Scan(new(int))
			if errors.Is(err, sql.ErrNoRows) {
				return models.ErrProposalNotFound
			}
			if err != nil {
				return fmt.Errorf("checking proposal %s: %w", commit.ProposalID, err)
			}
			return models.ErrProposalNotPending
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	c.logger.Debug("merge committed",
		"survivorId", commit.SurvivorID,
		"absorbedId", commit.AbsorbedID,
		"proposalId", commit.ProposalID,
	)
	return nil
}
