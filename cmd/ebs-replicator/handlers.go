package main

import (
	"context"

	"github.com/raoulx24/ebs-snapshot-replicator/internal/cloud"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/config"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/logging"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/replication"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/retention"
)

func newSharer(p *cloud.Provider, cfg config.Config, log logging.Logger) *replication.Sharer {
	return replication.NewSharer(cfg.Replication, p.EC2(cfg.Replication.SourceRegion), log)
}

func newCopier(p *cloud.Provider, cfg config.Config, log logging.Logger) *replication.Copier {
	r := cfg.Replication

	var source cloud.SourceOpener = cloud.LocalSource{Client: p.EC2(r.SourceRegion)}
	if r.CrossAccount() {
		source = cloud.NewDelegatedSource(p, r.SourceRoleARN, r.SourceRegion)
	}

	return replication.NewCopier(cfg, source, p.EC2(r.TargetRegion), log)
}

func newEngine(p *cloud.Provider, cfg config.Config, log logging.Logger) *retention.Engine {
	return retention.New(cfg, p.EC2(cfg.Replication.TargetRegion), log)
}

// newHandler builds the share or copy handler for role.
func newHandler(ctx context.Context, role config.Role, cfg config.Config, log logging.Logger) (replication.Handler, error) {
	p, err := cloud.NewProvider(ctx)
	if err != nil {
		return nil, err
	}
	if role == config.RoleCopy {
		return newCopier(p, cfg, log), nil
	}
	return newSharer(p, cfg, log), nil
}
