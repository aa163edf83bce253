package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Provider builds AWS clients from the process's own credentials.
type Provider struct {
	base aws.Config
}

// NewProvider loads the default AWS configuration chain.
func NewProvider(ctx context.Context) (*Provider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return &Provider{base: cfg}, nil
}

// EC2 returns a client for region. An empty region keeps the default.
func (p *Provider) EC2(region string) *ec2.Client {
	return ec2.NewFromConfig(p.base, func(o *ec2.Options) {
		if region != "" {
			o.Region = region
		}
	})
}

// STS returns a client in the default region.
func (p *Provider) STS() *sts.Client {
	return sts.NewFromConfig(p.base)
}

// EC2WithCredentials returns a client for region that signs with creds
// instead of the process credentials.
func (p *Provider) EC2WithCredentials(region string, creds aws.CredentialsProvider) *ec2.Client {
	return ec2.NewFromConfig(p.base, func(o *ec2.Options) {
		if region != "" {
			o.Region = region
		}
		o.Credentials = creds
	})
}
