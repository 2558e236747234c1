package notify

import (
	"context"
	"log/slog"
)

// Event describes a workflow outcome worth surfacing to users. Delivery is
// fire-and-forget; the merge core never consumes a return value.
type Event struct {
	Type       string
	ProposalID string
	SpotIDs    []string
	Actor      string
}

const (
	EventProposalCreated = "proposal.created"
	EventVoteRecorded    = "proposal.vote"
	EventApproved        = "proposal.approved"
	EventRejected        = "proposal.rejected"
	EventCancelled       = "proposal.cancelled"
	EventMergeExecuted   = "merge.executed"
)

type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// LogNotifier writes events to the structured log. It stands in for the
// toast/push layer, which is outside this core.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, event Event) {
	n.logger.Info("merge event",
		"type", event.Type,
		"proposalId", event.ProposalID,
		"spotIds", event.SpotIDs,
		"actor", event.Actor,
	)
}

// NoopNotifier discards all events.
type NoopNotifier struct{}

func (NoopNotifier) Notify(ctx context.Context, event Event) {}
