package database

import (
	"context"  // context carries deadlines and cancellation
	"fmt"      // fmt wraps config errors
	"net/http" // http supplies the SDK transport type

	"github.com/aws/aws-sdk-go-v2/aws"                        // aws provides pointer helpers
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http" // awshttp customises the SDK transport
	awsconfig "github.com/aws/aws-sdk-go-v2/config"           // awsconfig loads the AWS configuration
	"github.com/aws/aws-sdk-go-v2/credentials"                // credentials provides static keys
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"           // dynamodb client, paginator and waiter
)

// OpenDynamo initializes a DynamoDB client for the bound region.  Static
// credentials are used when the binding carries them, otherwise the default
// AWS credential chain applies.  A custom endpoint (DynamoDB Local,
// LocalStack) overrides the regional one.
func OpenDynamo(ctx context.Context, spec *ConnSpec) (*dynamodb.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(spec.Region),
	}
	if spec.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(spec.AccessKeyID, spec.SecretAccessKey, ""),
		))
	}
	tlsConf, err := spec.TLSConfig()
	if err != nil {
		return nil, err
	}
	if tlsConf != nil {
		httpClient := awshttp.NewBuildableClient().WithTransportOptions(func(tr *http.Transport) {
			tr.TLSClientConfig = tlsConf
		})
		loadOpts = append(loadOpts, awsconfig.WithHTTPClient(httpClient))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if spec.Endpoint != "" {
			o.BaseEndpoint = aws.String(spec.Endpoint)
		}
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if _, err := client.ListTables(pingCtx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)}); err != nil {
		return nil, fmt.Errorf("dynamodb ping %s: %w", spec.Region, err)
	}
	return client, nil
}
