package proposaldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spotmerge.hitchmap.org/internal/identity"
	"spotmerge.hitchmap.org/internal/models"
)

// proposalRow mirrors one proposals table row.
type proposalRow struct {
	ID             string
	SpotID1        string
	SpotID2        string
	PairKey        string
	Status         string
	Proposer       string
	Reason         string
	DistanceMeters float64
	NameSimilarity float64
	Confidence     int64
	CreatedAt      int64
	DecidedBy      sql.NullString
	DecidedAt      sql.NullInt64
	DecisionReason sql.NullString
}

const proposalColumns = `id, spot_id_1, spot_id_2, pair_key, status, proposer, reason,
    distance_meters, name_similarity, confidence, created_at,
    decided_by, decided_at, decision_reason`

func scanProposalRow(scanner interface{ Scan(...any) error }) (proposalRow, error) {
	var row proposalRow
	err := scanner.Scan(
		&row.ID,
		&row.SpotID1,
		&row.SpotID2,
		&row.PairKey,
		&row.Status,
		&row.Proposer,
		&row.Reason,
		&row.DistanceMeters,
		&row.NameSimilarity,
		&row.Confidence,
		&row.CreatedAt,
		&row.DecidedBy,
		&row.DecidedAt,
		&row.DecisionReason,
	)
	return row, err
}

func (row proposalRow) toModel(votes models.VoteSets) models.MergeProposal {
	p := models.MergeProposal{
		ID:             row.ID,
		SpotID1:        row.SpotID1,
		SpotID2:        row.SpotID2,
		PairKey:        row.PairKey,
		Status:         models.ProposalStatus(row.Status),
		Proposer:       identity.Identity(row.Proposer),
		Reason:         row.Reason,
		DistanceMeters: row.DistanceMeters,
		NameSimilarity: row.NameSimilarity,
		Confidence:     int(row.Confidence),
		Votes:          votes,
		CreatedAt:      millisToTime(row.CreatedAt),
	}
	if row.DecidedBy.Valid {
		p.DecidedBy = identity.Identity(row.DecidedBy.String)
	}
	if row.DecidedAt.Valid {
		p.DecidedAt = millisToTime(row.DecidedAt.Int64)
	}
	if row.DecisionReason.Valid {
		p.DecisionReason = row.DecisionReason.String
	}
	return p
}

func millisToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func timeToMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

const insertProposal = `
INSERT INTO proposals (` + proposalColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectProposalByID = `SELECT ` + proposalColumns + ` FROM proposals WHERE id = ?`

const selectPendingByPairKey = `SELECT ` + proposalColumns + ` FROM proposals WHERE pair_key = ? AND status = 'pending'`

const selectVotes = `SELECT voter, choice FROM proposal_votes WHERE proposal_id = ?`

// CreateProposalIfAbsent inserts p unless a pending proposal already covers
// p.PairKey. The check and insert run in one immediate transaction, so two
// concurrent submitters cannot both pass the existence check.
func (c *Client) CreateProposalIfAbsent(ctx context.Context, p models.MergeProposal) (models.MergeProposal, bool, error) {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.MergeProposal{}, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := scanProposalRow(tx.QueryRowContext(ctx, selectPendingByPairKey, p.PairKey))
	if err == nil {
		votes, verr := c.loadVotesTx(ctx, tx, existing.ID)
		if verr != nil {
			return models.MergeProposal{}, false, verr
		}
		if cerr := tx.Commit(); cerr != nil {
			return models.MergeProposal{}, false, fmt.Errorf("committing: %w", cerr)
		}
		return existing.toModel(votes), false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.MergeProposal{}, false, fmt.Errorf("checking pending pair: %w", err)
	}

	_, err = tx.ExecContext(ctx, insertProposal,
		p.ID,
		p.SpotID1,
		p.SpotID2,
		p.PairKey,
		string(p.Status),
		p.Proposer.String(),
		p.Reason,
		p.DistanceMeters,
		p.NameSimilarity,
		p.Confidence,
		timeToMillis(p.CreatedAt),
		nullString(p.DecidedBy.String()),
		nullMillis(p.DecidedAt),
		nullString(p.DecisionReason),
	)
	if err != nil {
		return models.MergeProposal{}, false, fmt.Errorf("inserting proposal: %w", err)
	}
	if err := c.writeVotesTx(ctx, tx, p.ID, p.Votes); err != nil {
		return models.MergeProposal{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return models.MergeProposal{}, false, fmt.Errorf("committing: %w", err)
	}
	return p, true, nil
}

// GetProposal returns the proposal or models.ErrProposalNotFound.
func (c *Client) GetProposal(ctx context.Context, id string) (models.MergeProposal, error) {
	row, err := scanProposalRow(c.DB.QueryRowContext(ctx, selectProposalByID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.MergeProposal{}, models.ErrProposalNotFound
	}
	if err != nil {
		return models.MergeProposal{}, fmt.Errorf("loading proposal %s: %w", id, err)
	}

	votes, err := c.loadVotes(ctx, id)
	if err != nil {
		return models.MergeProposal{}, err
	}
	return row.toModel(votes), nil
}

const updateProposal = `
UPDATE proposals SET
    status = ?, decided_by = ?, decided_at = ?, decision_reason = ?
WHERE id = ?
`

// UpdateProposal loads the proposal, applies mutate, and persists the result
// inside one immediate transaction. This serializes all mutations per
// proposal id at the database level.
func (c *Client) UpdateProposal(ctx context.Context, id string, mutate func(*models.MergeProposal) error) (models.MergeProposal, error) {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.MergeProposal{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	row, err := scanProposalRow(tx.QueryRowContext(ctx, selectProposalByID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.MergeProposal{}, models.ErrProposalNotFound
	}
	if err != nil {
		return models.MergeProposal{}, fmt.Errorf("loading proposal %s: %w", id, err)
	}

	votes, err := c.loadVotesTx(ctx, tx, id)
	if err != nil {
		return models.MergeProposal{}, err
	}

	p := row.toModel(votes)
	if err := mutate(&p); err != nil {
		return models.MergeProposal{}, err
	}

	_, err = tx.ExecContext(ctx, updateProposal,
		string(p.Status),
		nullString(p.DecidedBy.String()),
		nullMillis(p.DecidedAt),
		nullString(p.DecisionReason),
		id,
	)
	if err != nil {
		return models.MergeProposal{}, fmt.Errorf("updating proposal %s: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM proposal_votes WHERE proposal_id = ?`, id); err != nil {
		return models.MergeProposal{}, fmt.Errorf("clearing votes for %s: %w", id, err)
	}
	if err := c.writeVotesTx(ctx, tx, id, p.Votes); err != nil {
		return models.MergeProposal{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.MergeProposal{}, fmt.Errorf("committing: %w", err)
	}
	return p, nil
}

// ListProposals returns proposals with the given status, or all when status
// is empty, ordered by creation time.
func (c *Client) ListProposals(ctx context.Context, status models.ProposalStatus) ([]models.MergeProposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals ORDER BY created_at, id`
	args := []any{}
	if status != "" {
		query = `SELECT ` + proposalColumns + ` FROM proposals WHERE status = ? ORDER BY created_at, id`
		args = append(args, string(status))
	}

	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing proposals: %w", err)
	}
	defer rows.Close()

	out := []models.MergeProposal{}
	for rows.Next() {
		row, err := scanProposalRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning proposal: %w", err)
		}
		votes, err := c.loadVotes(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, row.toModel(votes))
	}
	return out, rows.Err()
}

// Stats counts proposals by status.
func (c *Client) Stats(ctx context.Context) (models.ProposalStats, error) {
	rows, err := c.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM proposals GROUP BY status`)
	if err != nil {
		return models.ProposalStats{}, fmt.Errorf("counting proposals: %w", err)
	}
	defer rows.Close()

	var stats models.ProposalStats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return models.ProposalStats{}, fmt.Errorf("scanning counts: %w", err)
		}
		switch models.ProposalStatus(status) {
		case models.StatusPending:
			stats.Pending = count
		case models.StatusApproved:
			stats.Approved = count
		case models.StatusExecuted:
			stats.Executed = count
		case models.StatusRejected:
			stats.Rejected = count
		case models.StatusCancelled:
			stats.Cancelled = count
		}
	}
	return stats, rows.Err()
}

func (c *Client) loadVotes(ctx context.Context, proposalID string) (models.VoteSets, error) {
	rows, err := c.DB.QueryContext(ctx, selectVotes, proposalID)
	if err != nil {
		return models.VoteSets{}, fmt.Errorf("loading votes for %s: %w", proposalID, err)
	}
	defer rows.Close()
	return scanVotes(rows, proposalID)
}

func (c *Client) loadVotesTx(ctx context.Context, tx *sql.Tx, proposalID string) (models.VoteSets, error) {
	rows, err := tx.QueryContext(ctx, selectVotes, proposalID)
	if err != nil {
		return models.VoteSets{}, fmt.Errorf("loading votes for %s: %w", proposalID, err)
	}
	defer rows.Close()
	return scanVotes(rows, proposalID)
}

func scanVotes(rows *sql.Rows, proposalID string) (models.VoteSets, error) {
	votes := models.NewVoteSets()
	for rows.Next() {
		var voter, choice string
		if err := rows.Scan(&voter, &choice); err != nil {
			return models.VoteSets{}, fmt.Errorf("scanning vote for %s: %w", proposalID, err)
		}
		votes.Cast(identity.Identity(voter), models.VoteChoice(choice))
	}
	return votes, rows.Err()
}

func (c *Client) writeVotesTx(ctx context.Context, tx *sql.Tx, proposalID string, votes models.VoteSets) error {
	for voter := range votes.Approve {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO proposal_votes (proposal_id, voter, choice) VALUES (?, ?, ?)`,
			proposalID, voter.String(), string(models.VoteApprove),
		); err != nil {
			return fmt.Errorf("writing vote for %s: %w", proposalID, err)
		}
	}
	for voter := range votes.Reject {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO proposal_votes (proposal_id, voter, choice) VALUES (?, ?, ?)`,
			proposalID, voter.String(), string(models.VoteReject),
		); err != nil {
			return fmt.Errorf("writing vote for %s: %w", proposalID, err)
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullMillis(t time.Time) sql.NullInt64 {
	return sql.NullInt64{Int64: timeToMillis(t), Valid: !t.IsZero()}
}
