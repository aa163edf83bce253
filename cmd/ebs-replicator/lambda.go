package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/spf13/cobra"

	"github.com/raoulx24/ebs-snapshot-replicator/internal/cloud"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/config"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/event"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/logging"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/replication"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/retention"
)

func newLambdaCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "lambda {share|copy|cleanup}",
		Short:     "Run as an AWS Lambda function",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"share", "copy", "cleanup"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLambda(cmd.Context(), args[0])
		},
	}
}

// lambdaHandlerFromEnv returns the handler configured for a custom runtime.
func lambdaHandlerFromEnv() (string, bool) {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") == "" {
		return "", false
	}
	name := os.Getenv("_HANDLER")
	return name, name != ""
}

func (a *app) runLambda(ctx context.Context, name string) error {
	role, err := config.ParseRole(name)
	if err != nil {
		return err
	}
	if err := a.load(role); err != nil {
		return err
	}

	p, err := cloud.NewProvider(ctx)
	if err != nil {
		return err
	}

	a.log.Info("starting lambda handler", "handler", role)
	switch role {
	case config.RoleShare:
		lambda.Start(eventHandler(newSharer(p, a.cfg, a.log), a.log))
	case config.RoleCopy:
		lambda.Start(eventHandler(newCopier(p, a.cfg, a.log), a.log))
	case config.RoleCleanup:
		lambda.Start(cleanupHandler(newEngine(p, a.cfg, a.log), a.log))
	default:
		return fmt.Errorf("no lambda handler for %q", role)
	}
	return nil
}

// eventHandler adapts a replication handler to the EventBridge trigger.
// A returned error fails the invocation.
func eventHandler(h replication.Handler, log logging.Logger) func(context.Context, events.CloudWatchEvent) (replication.Outcome, error) {
	return func(ctx context.Context, raw events.CloudWatchEvent) (replication.Outcome, error) {
		ev, err := event.FromCloudWatch(raw)
		if err != nil {
			log.Error("rejecting event", "event", raw.ID, "request", requestID(ctx), "error", err)
			return replication.Outcome{}, err
		}

		out, err := h.Handle(ctx, ev)
		if err != nil {
			log.Error("invocation failed", "snapshot", ev.SnapshotID, "request", requestID(ctx), "code", cloud.ErrorCode(err), "error", err)
			return out, err
		}
		log.Info("invocation done", "snapshot", ev.SnapshotID, "request", requestID(ctx), "action", out.Action)
		return out, nil
	}
}

func cleanupHandler(e *retention.Engine, log logging.Logger) func(context.Context) (retention.Report, error) {
	return func(ctx context.Context) (retention.Report, error) {
		rep, err := e.Apply(ctx)
		if err != nil {
			log.Error("cleanup finished with errors", "request", requestID(ctx), "failed", rep.Failed, "error", err)
		}
		return rep, err
	}
}

func requestID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		return lc.AwsRequestID
	}
	return ""
}
