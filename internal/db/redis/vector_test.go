package redis

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/fewshot/internal/db"
)

func chunkIndex(t *testing.T) *db.IndexDefinition {
	t.Helper()
	def, err := db.NewIndex("fewshot:research:abc:idx").
		Prefix("fewshot:research:abc:doc:").
		Numeric("seq").
		VectorFlat("vector", 3, db.DistanceCosine).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return def
}

func TestBuildCreateArgs(t *testing.T) {
	args, err := buildCreateArgs(chunkIndex(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"fewshot:research:abc:idx", "ON", "HASH",
		"PREFIX", "1", "fewshot:research:abc:doc:",
		"SCHEMA",
		"seq", "NUMERIC",
		"vector", "VECTOR", "FLAT", "6", "TYPE", "FLOAT32", "DIM", "3", "DISTANCE_METRIC", "COSINE",
	}
	if !slices.Equal(args, want) {
		t.Errorf("args =\n%v\nwant\n%v", args, want)
	}
}

func TestCreateIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE" && cmd[1] == "fewshot:research:abc:idx"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.CreateIndex(context.Background(), chunkIndex(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	if err := s.CreateIndex(context.Background(), chunkIndex(t)); !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestDropIndex_Unknown(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "gone:idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	if err := s.DropIndex(context.Background(), "gone:idx"); !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestSearchKNN(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" &&
				cmd[1] == "fewshot:research:abc:idx" &&
				cmd[2] == "*=>[KNN 2 @vector $BLOB]" &&
				slices.Contains(cmd, "__vector_score") &&
				slices.Contains(cmd, "DIALECT")
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("fewshot:research:abc:doc:0"),
			mock.RedisArray(
				mock.RedisString("content"), mock.RedisString("Tesla shares jumped."),
				mock.RedisString("__vector_score"), mock.RedisString("0.1"),
			),
			mock.RedisString("fewshot:research:abc:doc:1"),
			mock.RedisArray(
				mock.RedisString("content"), mock.RedisString("Rates unchanged."),
				mock.RedisString("__vector_score"), mock.RedisString("1.4"),
			),
		)))

	s := NewStoreForTest(c)
	res, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName:    "fewshot:research:abc:idx",
		Vector:       []float32{1, 0, 0},
		K:            2,
		ReturnFields: []string{"content"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 || len(res.Entries) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if math.Abs(res.Entries[0].Score-0.9) > 1e-9 {
		t.Errorf("score = %f, want 0.9", res.Entries[0].Score)
	}
	if res.Entries[1].Score != 0 {
		t.Errorf("distance above 1 must clamp to 0, got %f", res.Entries[1].Score)
	}
	if _, ok := res.Entries[0].Fields["__vector_score"]; ok {
		t.Error("score field must be removed from fields")
	}
	if res.Entries[0].Fields["content"] != "Tesla shares jumped." {
		t.Errorf("content = %q", res.Entries[0].Fields["content"])
	}
}

func TestSearchKNN_Validation(t *testing.T) {
	s := NewStoreForTest(nil)
	ctx := context.Background()
	if _, err := s.SearchKNN(ctx, &db.KNNQuery{Vector: []float32{1}, K: 1}); err == nil {
		t.Error("expected error for missing index name")
	}
	if _, err := s.SearchKNN(ctx, &db.KNNQuery{IndexName: "i", K: 1}); err == nil {
		t.Error("expected error for empty vector")
	}
	if _, err := s.SearchKNN(ctx, &db.KNNQuery{IndexName: "i", Vector: []float32{1}}); err == nil {
		t.Error("expected error for non-positive k")
	}
}

func TestHSetMulti(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(2)),
			mock.Result(mock.RedisInt64(2)),
		})

	s := NewStoreForTest(c)
	err := s.HSetMulti(context.Background(), []db.HashSetItem{
		{Key: "k1", Fields: map[string]string{"f1": "v1"}},
		{Key: "k2", Fields: map[string]string{"f2": "v2"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := NewStoreForTest(nil).HSetMulti(context.Background(), nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
}

func TestScan_MultiPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	first := true
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SCAN"
		})).
		DoAndReturn(func(_ context.Context, _ rueidis.Completed) rueidis.RedisResult {
			if first {
				first = false
				return mock.Result(mock.RedisArray(
					mock.RedisInt64(42),
					mock.RedisArray(mock.RedisString("key1")),
				))
			}
			return mock.Result(mock.RedisArray(
				mock.RedisInt64(0),
				mock.RedisArray(mock.RedisString("key2")),
			))
		}).Times(2)

	s := NewStoreForTest(c)
	keys, err := s.Scan(context.Background(), "prefix:*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(keys, []string{"key1", "key2"}) {
		t.Fatalf("keys = %v", keys)
	}
}

func TestVectorToBytes(t *testing.T) {
	b := VectorToBytes([]float32{1, -2})
	if len(b) != 8 {
		t.Fatalf("len = %d, want 8", len(b))
	}
	// 1.0 little-endian is 00 00 80 3f
	if b[2] != 0x80 || b[3] != 0x3f {
		t.Errorf("unexpected encoding % x", b)
	}
}
