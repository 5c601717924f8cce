package gateway

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"resighting-export/internal/shared/telemetry"
)

const defaultFetchTimeout = 30 * time.Second

// DynamoConfig describes the table a run reads from.
type DynamoConfig struct {
	Region             string
	Endpoint           string
	Table              string
	TimestampAttribute string
	Timeout            time.Duration
}

type scanAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Dynamo implements Gateway with a single filtered Scan.
type Dynamo struct {
	client  scanAPI
	table   string
	tsAttr  string
	timeout time.Duration
	decoder *attributevalue.Decoder
}

// NewDynamo builds a DynamoDB-backed gateway. A non-empty Endpoint targets
// DynamoDB Local; static placeholder credentials are used there when the
// environment carries none.
func NewDynamo(ctx context.Context, cfg DynamoConfig) (*Dynamo, error) {
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, fmt.Errorf("dynamodb table is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Endpoint != "" && os.Getenv("AWS_ACCESS_KEY_ID") == "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: load aws config: %w", ErrStoreUnavailable, err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newDynamo(client, cfg), nil
}

func newDynamo(client scanAPI, cfg DynamoConfig) *Dynamo {
	tsAttr := cfg.TimestampAttribute
	if tsAttr == "" {
		tsAttr = "Timestamp"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Dynamo{
		client:  client,
		table:   cfg.Table,
		tsAttr:  tsAttr,
		timeout: timeout,
		decoder: attributevalue.NewDecoder(func(o *attributevalue.DecoderOptions) {
			o.UseNumber = true
		}),
	}
}

// Fetch issues one Scan with `tsAttr BETWEEN start AND end`. A truncated scan is
// logged and the first page is returned.
func (d *Dynamo) Fetch(ctx context.Context, r DateRange) (iter.Seq2[RawRecord, error], error) {
	filter := expression.Name(d.tsAttr).Between(expression.Value(r.Start), expression.Value(r.End))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("build scan filter: %w", err)
	}

	scanCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	out, err := d.client.Scan(scanCtx, &dynamodb.ScanInput{
		TableName:                 aws.String(d.table),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
			return nil, fmt.Errorf("scan table %s: %w", d.table, ctxErr)
		}
		// A caller deadline is a timeout like our own, not a cancellation.
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: scan table %s timed out", ErrStoreUnavailable, d.table)
		}
		return nil, fmt.Errorf("%w: scan table %s: %w", ErrStoreUnavailable, d.table, err)
	}

	if len(out.LastEvaluatedKey) > 0 {
		telemetry.Warn("gateway.scan_truncated", map[string]any{
			"table":    d.table,
			"returned": len(out.Items),
			"scanned":  out.ScannedCount,
		})
	}

	items := out.Items
	return func(yield func(RawRecord, error) bool) {
		for _, item := range items {
			rec, err := d.decode(item)
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}, nil
}

func (d *Dynamo) decode(item map[string]types.AttributeValue) (RawRecord, error) {
	var rec map[string]any
	if err := d.decoder.Decode(&types.AttributeValueMemberM{Value: item}, &rec); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	return RawRecord(rec), nil
}

var _ Gateway = (*Dynamo)(nil)
