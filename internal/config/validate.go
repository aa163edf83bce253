package config

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
)

var (
	// ErrMissing marks a required setting that is absent.
	ErrMissing = errors.New("missing required setting")
	// ErrInvalid marks a setting that is present but unusable.
	ErrInvalid = errors.New("invalid setting")
)

// Role names a handler whose settings must be present.
type Role string

const (
	RoleShare   Role = "share"
	RoleCopy    Role = "copy"
	RoleCleanup Role = "cleanup"
	RoleServe   Role = "serve"
)

// ParseRole maps a handler name to its Role.
func ParseRole(name string) (Role, error) {
	switch r := Role(name); r {
	case RoleShare, RoleCopy, RoleCleanup:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown handler %q", ErrInvalid, name)
	}
}

// Validate checks that every setting the given roles need is present and
// well formed. All problems are reported together.
func (c Config) Validate(roles ...Role) error {
	var err error
	missing := func(name, value string) {
		if value == "" {
			err = multierr.Append(err, fmt.Errorf("%w: %s", ErrMissing, name))
		}
	}

	for _, role := range roles {
		switch role {
		case RoleShare:
			missing("target account id", c.Replication.TargetAccountID)

		case RoleCopy:
			missing("source region", c.Replication.SourceRegion)
			missing("target region", c.Replication.TargetRegion)
			missing("target kms key arn", c.Replication.TargetKMSKeyARN)
			missing("setup name", c.SetupName)

		case RoleCleanup, RoleServe:
			missing("target region", c.Replication.TargetRegion)
			missing("setup name", c.SetupName)
			switch {
			case c.Retention.PeriodDays == nil:
				err = multierr.Append(err, fmt.Errorf("%w: retention period", ErrMissing))
			case *c.Retention.PeriodDays < 0:
				err = multierr.Append(err, fmt.Errorf("%w: retention period %d is negative", ErrInvalid, *c.Retention.PeriodDays))
			}
			if role == RoleServe {
				if _, perr := cron.ParseStandard(c.Schedule.Cleanup); perr != nil {
					err = multierr.Append(err, fmt.Errorf("%w: cleanup schedule %q: %v", ErrInvalid, c.Schedule.Cleanup, perr))
				}
			}

		default:
			err = multierr.Append(err, fmt.Errorf("%w: unknown role %q", ErrInvalid, role))
		}
	}

	return err
}
