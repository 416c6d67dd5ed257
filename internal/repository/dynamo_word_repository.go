package repository

import (
	"context" // context carries deadlines and cancellation
	"errors"  // errors matches wrapped driver errors
	"fmt"     // fmt wraps codec errors
	"sort"    // sort orders scanned items
	"time"    // time stamps records and bounds waits

	"github.com/aws/aws-sdk-go-v2/aws"                             // aws provides pointer helpers
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue" // attributevalue converts items
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"                // dynamodb client, paginator and waiter
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"          // types holds DynamoDB exceptions and schema
	"github.com/google/uuid"                                       // uuid generates record ids
	"go.uber.org/zap"                                              // zap logs schema changes

	"github.com/iliyamo/wordbook/internal/model" // model holds WordEntry
)

// DynamoAPI is the subset of *dynamodb.Client the gateway calls.
type DynamoAPI interface {
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// tableActiveTimeout bounds how long EnsureSchema waits for a new table.
const tableActiveTimeout = 2 * time.Minute

// wordItem mirrors an item of the words table.  CreatedAt orders items
// with equal sort values.
type wordItem struct {
	ID         string `dynamodbav:"id"`         // hash key, a random UUID
	Word       string `dynamodbav:"word"`       // word as submitted
	Definition string `dynamodbav:"definition"` // definition as submitted
	CreatedAt  int64  `dynamodbav:"created_at"` // insertion time in nanoseconds
}

// DynamoWordRepo stores word entries as items of one DynamoDB table named
// "<database>.<table>".  DynamoDB has no databases; the prefix keeps tables
// of different deployments apart within an account.
type DynamoWordRepo struct {
	api       DynamoAPI        // DynamoDB client or a test double
	tableName string           // "<database>.<table>"
	table     TableSpec        // configured names and replica hint
	log       *zap.Logger      // schema change logging
	now       func() time.Time // clock for CreatedAt
}

// NewDynamoWordRepo wraps a DynamoDB client.
func NewDynamoWordRepo(api DynamoAPI, table TableSpec, log *zap.Logger) *DynamoWordRepo {
	return &DynamoWordRepo{
		api:       api,
		tableName: table.Database + "." + table.Table,
		table:     table,
		log:       log,
		now:       time.Now,
	}
}

// EnsureSchema creates the table on demand (pay per request, hash key id)
// and waits for it to become active.
func (r *DynamoWordRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.tableName)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return wrap("ensure schema", err, classifyDynamo)
	}

	_, err = r.api.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(r.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return wrap("ensure schema", err, classifyDynamo)
	}

	waiter := dynamodb.NewTableExistsWaiter(r.api)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.tableName)}, tableActiveTimeout); err != nil {
		return wrap("ensure schema", err, classifyDynamo)
	}
	r.log.Info("table created", zap.String("table", r.tableName))
	return nil
}

// Insert puts a new item keyed by a random UUID.
func (r *DynamoWordRepo) Insert(ctx context.Context, entry model.WordEntry) (*model.WordEntry, error) {
	item := wordItem{
		ID:         uuid.NewString(),
		Word:       entry.Word,
		Definition: entry.Definition,
		CreatedAt:  r.now().UnixNano(),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, newError(KindValidation, "insert", fmt.Errorf("marshal item: %w", err))
	}
	if _, err := r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	}); err != nil {
		return nil, wrap("insert", err, classifyDynamo)
	}
	entry.ID = item.ID
	return &entry, nil
}

// ListAll scans the whole table and sorts in memory; DynamoDB has no
// ordering across partitions.
func (r *DynamoWordRepo) ListAll(ctx context.Context, orderBy string) ([]model.WordEntry, error) {
	if err := checkOrderField("list", orderBy); err != nil {
		return nil, err
	}

	var items []wordItem
	p := dynamodb.NewScanPaginator(r.api, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, wrap("list", err, classifyDynamo)
		}
		var batch []wordItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, newError(KindUnknown, "list", fmt.Errorf("unmarshal items: %w", err))
		}
		items = append(items, batch...)
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt < items[j].CreatedAt })
	out := make([]model.WordEntry, 0, len(items))
	for _, it := range items {
		out = append(out, model.WordEntry{ID: it.ID, Word: it.Word, Definition: it.Definition})
	}
	sortEntries(out, orderBy)
	return out, nil
}

// Ping describes the table.
func (r *DynamoWordRepo) Ping(ctx context.Context) error {
	_, err := r.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.tableName)})
	return wrap("ping", err, classifyDynamo)
}

// Close is a no-op; the SDK client holds no connection of its own.
func (r *DynamoWordRepo) Close(context.Context) error { return nil }

func classifyDynamo(err error) Kind {
	var (
		notFound    *types.ResourceNotFoundException
		conditional *types.ConditionalCheckFailedException
	)
	switch {
	case errors.As(err, &notFound):
		return KindNotFound
	case errors.As(err, &conditional):
		return KindValidation
	case isConnectionError(err):
		return KindConnection
	}
	return KindUnknown
}
