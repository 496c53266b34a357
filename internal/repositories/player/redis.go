package player

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/guild-progression/internal/entities/progression"
	"github.com/KirkDiggler/guild-progression/internal/errors"
	redisclient "github.com/KirkDiggler/guild-progression/internal/redis"
)

// Keys carry the guild as a hash tag so a player and its guild index share
// a cluster slot.
const (
	playerKeyPrefix  = "player:"
	guildIndexPrefix = "player_guild:"
)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis player repository
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

// NewRedis creates a Redis-backed player repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

func playerKey(guildID, dcID string) string {
	return playerKeyPrefix + "{" + guildID + "}:" + dcID
}

func guildIndexKey(guildID string) string {
	return guildIndexPrefix + "{" + guildID + "}"
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if err := validateIdentity(input.GuildID, input.DcID); err != nil {
		return nil, err
	}

	key := playerKey(input.GuildID, input.DcID)
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("player %s not found", progression.PlayerKey(input.GuildID, input.DcID))
		}
		return nil, errors.Wrap(err, "failed to get player")
	}

	rec, err := decodeRecord([]byte(data))
	if err != nil {
		return nil, errors.Wrapf(err, "stored player %s is malformed", key).WithMeta("key", key)
	}

	return &GetOutput{Record: rec}, nil
}

func (r *redisRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Record == nil {
		return nil, errors.InvalidArgument(errRecordNil)
	}
	if err := input.Record.Validate(); err != nil {
		return nil, err
	}

	data, err := json.Marshal(input.Record)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal player")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, playerKey(input.Record.GuildID, input.Record.DcID), data, 0)
	pipe.SAdd(ctx, guildIndexKey(input.Record.GuildID), input.Record.DcID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to save player")
	}

	return &SaveOutput{Record: input.Record}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if err := validateIdentity(input.GuildID, input.DcID); err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, playerKey(input.GuildID, input.DcID))
	pipe.SRem(ctx, guildIndexKey(input.GuildID), input.DcID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to delete player")
	}
	if del.Val() == 0 {
		return nil, errors.NotFoundf("player %s not found", progression.PlayerKey(input.GuildID, input.DcID))
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) ListByGuild(ctx context.Context, input ListByGuildInput) (*ListByGuildOutput, error) {
	if input.GuildID == "" {
		return nil, errors.InvalidArgument(errGuildIDEmpty)
	}

	ids, err := r.client.SMembers(ctx, guildIndexKey(input.GuildID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get guild index")
	}

	output := &ListByGuildOutput{
		Records: make([]*progression.PlayerRecord, 0, len(ids)),
		Failed:  map[string]error{},
	}
	if len(ids) == 0 {
		return output, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = playerKey(input.GuildID, id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get players")
	}

	for i, value := range values {
		// Index entries can outlive their record
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
		output.Records = append(output.Records, rec)
	}

	return output, nil
}

func (r *redisRepository) ListGuilds(ctx context.Context, _ ListGuildsInput) (*ListGuildsOutput, error) {
	keys, err := redisclient.ScanKeys(ctx, r.client, guildIndexPrefix+"*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan guild indexes")
	}

	output := &ListGuildsOutput{GuildIDs: make([]string, 0, len(keys))}
	for _, key := range keys {
		tagged := strings.TrimPrefix(key, guildIndexPrefix)
		if !strings.HasPrefix(tagged, "{") || !strings.HasSuffix(tagged, "}") {
			continue
		}
		output.GuildIDs = append(output.GuildIDs, tagged[1:len(tagged)-1])
	}
	sort.Strings(output.GuildIDs)

	return output, nil
}

func validateIdentity(guildID, dcID string) error {
	if guildID == "" {
		return errors.InvalidArgument(errGuildIDEmpty)
	}
	if dcID == "" {
		return errors.InvalidArgument(errDcIDEmpty)
	}
	if strings.Contains(guildID, progression.KeySeparator) || strings.Contains(dcID, progression.KeySeparator) {
		return errors.InvalidArgumentf("ids must not contain %q", progression.KeySeparator)
	}
	return nil
}

func decodeRecord(data []byte) (*progression.PlayerRecord, error) {
	var rec progression.PlayerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, fmt.Sprintf("invalid player json: %v", err))
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}
