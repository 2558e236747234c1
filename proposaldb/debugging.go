package proposaldb

import (
	"context"
	"fmt"

	"github.com/davecgh/go-spew/spew"
)

// DumpProposal renders a proposal and its votes for debugging sessions.
func (c *Client) DumpProposal(ctx context.Context, id string) (string, error) {
	p, err := c.GetProposal(ctx, id)
	if err != nil {
		return "", err
	}
	return spew.Sdump(p), nil
}

// DumpHistory renders the full merge history log.
func (c *Client) DumpHistory(ctx context.Context) (string, error) {
	records, err := c.ListHistory(ctx)
	if err != nil {
		return "", err
	}
	return spew.Sdump(records), nil
}

// TableCounts returns row counts per table, handy when eyeballing a database
// file after a batch run.
func (c *Client) TableCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, table := range []string{"proposals", "proposal_votes", "redirects", "merge_history", "spots"} {
		var n int
		if err := c.DB.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
			return nil, fmt.Errorf("counting %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
