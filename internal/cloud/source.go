package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/google/uuid"
)

const defaultSessionPrefix = "ebs-snapshot-copy"

// SourceOpener yields a client able to read snapshots in the source account
// and region. Open is called once per invocation.
type SourceOpener interface {
	Open(ctx context.Context) (ec2.DescribeSnapshotsAPIClient, error)
}

// LocalSource reads with the process's own credentials.
type LocalSource struct {
	Client ec2.DescribeSnapshotsAPIClient
}

func (s LocalSource) Open(context.Context) (ec2.DescribeSnapshotsAPIClient, error) {
	return s.Client, nil
}

// DelegatedSource assumes a role in the source account for every Open and
// hands the temporary credentials to a fresh client. Nothing is cached:
// the credentials live exactly as long as the returned client.
type DelegatedSource struct {
	STS           STSAPI
	RoleARN       string
	SessionPrefix string
	NewClient     func(creds aws.CredentialsProvider) ec2.DescribeSnapshotsAPIClient
}

// NewDelegatedSource wires a DelegatedSource to real clients from p.
func NewDelegatedSource(p *Provider, roleARN, region string) *DelegatedSource {
	return &DelegatedSource{
		STS:           p.STS(),
		RoleARN:       roleARN,
		SessionPrefix: defaultSessionPrefix,
		NewClient: func(creds aws.CredentialsProvider) ec2.DescribeSnapshotsAPIClient {
			return p.EC2WithCredentials(region, creds)
		},
	}
}

func (s *DelegatedSource) Open(ctx context.Context) (ec2.DescribeSnapshotsAPIClient, error) {
	prefix := s.SessionPrefix
	if prefix == "" {
		prefix = defaultSessionPrefix
	}
	session := prefix + "-" + uuid.NewString()
	if len(session) > 64 {
		session = session[:64]
	}

	out, err := s.STS.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(s.RoleARN),
		RoleSessionName: aws.String(session),
	})
	if err != nil {
		return nil, fmt.Errorf("assuming role %s: %w", s.RoleARN, err)
	}
	if out.Credentials == nil {
		return nil, fmt.Errorf("assuming role %s: no credentials returned", s.RoleARN)
	}

	creds := credentials.NewStaticCredentialsProvider(
		aws.ToString(out.Credentials.AccessKeyId),
		aws.ToString(out.Credentials.SecretAccessKey),
		aws.ToString(out.Credentials.SessionToken),
	)
	return s.NewClient(creds), nil
}
