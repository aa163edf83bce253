package worker

import (
	"context"

	"github.com/raoulx24/ebs-snapshot-replicator/internal/retention"
)

// Cleaner runs one retention pass. *retention.Engine satisfies it.
type Cleaner interface {
	Apply(ctx context.Context) (retention.Report, error)
}
