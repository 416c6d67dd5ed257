package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/wordbook/internal/model"
)

// fakeDynamo keeps one table in memory.  Scan returns one item per page,
// newest first, so callers must page and sort.
type fakeDynamo struct {
	mu          sync.Mutex
	exists      bool
	createCalls int
	createErr   error
	putErr      error
	scanErr     error
	items       []map[string]types.AttributeValue
}

func (f *fakeDynamo) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.exists {
		return nil, &types.ResourceNotFoundException{Message: aws.String("table not found")}
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{
		TableName:   in.TableName,
		TableStatus: types.TableStatusActive,
	}}, nil
}

func (f *fakeDynamo) CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.exists = true
	return &dynamodb.CreateTableOutput{}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	if !f.exists {
		return nil, &types.ResourceNotFoundException{Message: aws.String("table not found")}
	}
	f.items = append([]map[string]types.AttributeValue{in.Item}, f.items...)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	start := 0
	if in.ExclusiveStartKey != nil {
		last := in.ExclusiveStartKey["id"].(*types.AttributeValueMemberS).Value
		for i, item := range f.items {
			if item["id"].(*types.AttributeValueMemberS).Value == last {
				start = i + 1
			}
		}
	}
	out := &dynamodb.ScanOutput{}
	if start < len(f.items) {
		out.Items = f.items[start : start+1]
		if start+1 < len(f.items) {
			out.LastEvaluatedKey = map[string]types.AttributeValue{"id": f.items[start]["id"]}
		}
	}
	return out, nil
}

func newDynamoRepo(api DynamoAPI) *DynamoWordRepo {
	repo := NewDynamoWordRepo(api, testTable, zap.NewNop())
	clock := time.Unix(1700000000, 0)
	repo.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	return repo
}

func TestDynamoWordRepo_EnsureSchema(t *testing.T) {
	t.Run("creates missing table once", func(t *testing.T) {
		api := &fakeDynamo{}
		repo := newDynamoRepo(api)

		require.NoError(t, repo.EnsureSchema(context.Background()))
		require.NoError(t, repo.EnsureSchema(context.Background()))
		assert.Equal(t, 1, api.createCalls)
		assert.Equal(t, "grand_tour.words", repo.tableName)
	})

	t.Run("table created concurrently", func(t *testing.T) {
		api := &fakeDynamo{createErr: &types.ResourceInUseException{Message: aws.String("in use")}}
		repo := newDynamoRepo(api)

		assert.NoError(t, repo.EnsureSchema(context.Background()))
	})

	t.Run("create fails", func(t *testing.T) {
		api := &fakeDynamo{createErr: errors.New("throttled")}
		repo := newDynamoRepo(api)

		err := repo.EnsureSchema(context.Background())
		require.Error(t, err)
		assert.Equal(t, KindUnknown, KindOf(err))
	})
}

func TestDynamoWordRepo_InsertAndList(t *testing.T) {
	ctx := context.Background()
	api := &fakeDynamo{}
	repo := newDynamoRepo(api)
	require.NoError(t, repo.EnsureSchema(ctx))

	inputs := []model.WordEntry{
		{Word: "pear", Definition: "b"},
		{Word: "apple", Definition: "first"},
		{Word: "apple", Definition: "second"},
		{Word: "", Definition: ""},
	}
	for _, in := range inputs {
		got, err := repo.Insert(ctx, in)
		require.NoError(t, err)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, in.Word, got.Word)
	}

	got, err := repo.ListAll(ctx, model.FieldWord)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "", got[0].Word)
	assert.Equal(t, "first", got[1].Definition)
	assert.Equal(t, "second", got[2].Definition)
	assert.Equal(t, "pear", got[3].Word)

	got, err = repo.ListAll(ctx, model.FieldDefinition)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "b", "first", "second"}, []string{
		got[0].Definition, got[1].Definition, got[2].Definition, got[3].Definition,
	})
}

func TestDynamoWordRepo_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("insert into missing table", func(t *testing.T) {
		repo := newDynamoRepo(&fakeDynamo{})
		_, err := repo.Insert(ctx, model.WordEntry{Word: "apple"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("scan times out", func(t *testing.T) {
		repo := newDynamoRepo(&fakeDynamo{exists: true, scanErr: context.DeadlineExceeded})
		_, err := repo.ListAll(ctx, model.FieldWord)
		assert.ErrorIs(t, err, ErrConnection)
	})

	t.Run("invalid order field", func(t *testing.T) {
		repo := newDynamoRepo(&fakeDynamo{exists: true})
		_, err := repo.ListAll(ctx, "created_at")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("ping missing table", func(t *testing.T) {
		repo := newDynamoRepo(&fakeDynamo{})
		assert.ErrorIs(t, repo.Ping(ctx), ErrNotFound)
		assert.NoError(t, repo.Close(ctx))
	})
}
