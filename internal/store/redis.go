package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/models"
	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	prefix string
}

// RedisOptions configures OpenRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// OpenRedis connects to Redis. Each record is a hash under prefix+key and
// a sorted set prefix+"index" orders keys by finish time.
func OpenRedis(ctx context.Context, opts RedisOptions) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisStore{client: client, prefix: opts.Prefix}, nil
}

func (s *redisStore) recordKey(key string) string { return s.prefix + key }

func (s *redisStore) indexKey() string { return s.prefix + "index" }

func (s *redisStore) Has(ctx context.Context, path string, modTime time.Time) (bool, error) {
	n, err := s.client.Exists(ctx, s.recordKey(Key(path, modTime))).Result()
	if err != nil {
		return false, fmt.Errorf("store: lookup %s: %w", path, err)
	}
	return n > 0, nil
}

func (s *redisStore) Mark(ctx context.Context, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	key := rec.Key()
	fields := map[string]interface{}{
		"source_path": rec.SourcePath,
		"mod_time":    rec.ModTime.UnixNano(),
		"job_id":      rec.JobID,
		"status":      string(rec.Status),
		"attempts":    rec.Attempts,
		"error_kind":  rec.ErrorKind,
		"error":       rec.Error,
		"output_dir":  rec.OutputDir,
		"finished_at": rec.FinishedAt.UnixNano(),
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.recordKey(key), fields)
	pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(rec.FinishedAt.UnixNano()), Member: key})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store: mark %s: %w", rec.SourcePath, err)
	}
	return nil
}

func (s *redisStore) List(ctx context.Context, limit int) ([]Record, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	keys, err := s.client.ZRevRange(ctx, s.indexKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}

	out := make([]Record, 0, len(keys))
	for _, key := range keys {
		fields, err := s.client.HGetAll(ctx, s.recordKey(key)).Result()
		if errors.Is(err, redis.Nil) || len(fields) == 0 {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("store: read %s: %w", key, err)
		}
		out = append(out, recordFromHash(fields))
	}
	return out, nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

func recordFromHash(h map[string]string) Record {
	attempts, _ := strconv.Atoi(h["attempts"])
	modTime, _ := strconv.ParseInt(h["mod_time"], 10, 64)
	finished, _ := strconv.ParseInt(h["finished_at"], 10, 64)
	return Record{
		SourcePath: h["source_path"],
		ModTime:    time.Unix(0, modTime),
		JobID:      h["job_id"],
		Status:     models.JobStatus(h["status"]),
		Attempts:   attempts,
		ErrorKind:  h["error_kind"],
		Error:      h["error"],
		OutputDir:  h["output_dir"],
		FinishedAt: time.Unix(0, finished),
	}
}
