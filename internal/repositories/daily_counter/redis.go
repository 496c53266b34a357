package dailycounter

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/guild-progression/internal/entities/progression"
	"github.com/KirkDiggler/guild-progression/internal/errors"
	redisclient "github.com/KirkDiggler/guild-progression/internal/redis"
)

// Every counter key shares one hash tag so ListAll can MGET them on a cluster.
const (
	counterKeyPrefix = "{daily_counter}:"
	counterIndexKey  = "{daily_counter}_index"
)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis daily counter repository
type RedisConfig struct {
	Client redisclient.Client
}

// Validate validates the RedisConfig
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a Redis-backed daily counter repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.DcID == "" {
		return nil, errors.InvalidArgument(errDcIDEmpty)
	}

	key := counterKeyPrefix + input.DcID
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("daily counter for %s not found", input.DcID)
		}
		return nil, errors.Wrap(err, "failed to get daily counter")
	}

	rec, err := decodeRecord([]byte(data))
	if err != nil {
		return nil, errors.Wrapf(err, "stored daily counter %s is malformed", key).WithMeta("key", key)
	}

	return &GetOutput{Record: rec}, nil
}

func (r *redisRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Record == nil {
		return nil, errors.InvalidArgument(errRecordNil)
	}
	dcID := recordDcID(input.Record)
	if dcID == "" {
		return nil, errors.InvalidArgument(errDcIDEmpty)
	}

	data, err := json.Marshal(input.Record)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal daily counter")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, counterKeyPrefix+dcID, data, 0)
	pipe.SAdd(ctx, counterIndexKey, dcID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to save daily counter")
	}

	return &SaveOutput{Record: input.Record}, nil
}

func (r *redisRepository) ListAll(ctx context.Context, _ ListAllInput) (*ListAllOutput, error) {
	ids, err := r.client.SMembers(ctx, counterIndexKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get daily counter index")
	}

	output := &ListAllOutput{
		Records: make([]*progression.DailyCounterRecord, 0, len(ids)),
		Failed:  map[string]error{},
	}
	if len(ids) == 0 {
		return output, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = counterKeyPrefix + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get daily counters")
	}

	for i, value := range values {
		if value == nil {
			continue
		}
		data, ok := value.(string)
		if !ok {
			output.Failed[ids[i]] = errors.Internalf("unexpected value type %T", value)
			continue
		}
		rec, err := decodeRecord([]byte(data))
		if err != nil {
			output.Failed[ids[i]] = err
			continue
		}
		// The key is authoritative when the stored body lost its id
		if rec.DcID == nil {
			id := ids[i]
			rec.DcID = &id
		}
		output.Records = append(output.Records, rec)
	}

	return output, nil
}

func decodeRecord(data []byte) (*progression.DailyCounterRecord, error) {
	var rec progression.DailyCounterRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid daily counter json")
	}
	return &rec, nil
}
