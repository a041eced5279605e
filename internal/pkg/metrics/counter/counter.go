package counter

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/ServerHub/internal/pkg/cache"
)

const (
	serverViewsKey = "serverhub:counters:server_views"
	FlushInterval  = time.Minute
)

// AddServerView increments the pending view counter for a server in Redis
func AddServerView(serverID uint) error {
	rdb := cache.GetClient()
	if rdb == nil {
		return nil
	}
	field := strconv.FormatUint(uint64(serverID), 10)
	return rdb.HIncrBy(context.Background(), serverViewsKey, field, 1).Err()
}

// Run flushes the pending counters every interval until ctx is done.
func Run(ctx context.Context, db *gorm.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := FlushAll(ctx, db); err != nil {
				log.Error().Err(err).Msg("failed to flush view counters")
			}
		}
	}
}

// FlushAll applies the pending view counters to the servers table
func FlushAll(ctx context.Context, db *gorm.DB) error {
	return flushHashToTable(ctx, db, serverViewsKey, "servers", "views")
}

// flushHashToTable drains a Redis hash atomically and applies batched increments.
// The hash is renamed first so increments arriving during the flush are kept.
func flushHashToTable(ctx context.Context, db *gorm.DB, redisKey, table, column string) error {
	rdb := cache.GetClient()
	if rdb == nil {
		return nil
	}

	tmpKey := fmt.Sprintf("%s:tmp:%d", redisKey, time.Now().UnixNano())
	if err := rdb.Rename(ctx, redisKey, tmpKey).Err(); err != nil {
		if err == redis.Nil || strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil
		}
		return err
	}
	defer rdb.Del(ctx, tmpKey)

	data, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}

	sql, args := incrementSQL(table, column, parseIncrements(data))
	if sql == "" {
		return nil
	}
	return db.WithContext(ctx).Exec(sql, args...).Error
}

type increment struct {
	id  uint64
	inc int64
}

// parseIncrements turns a Redis hash into increments sorted by id. Fields
// that are not numeric or carry a zero count are skipped.
func parseIncrements(data map[string]string) []increment {
	out := make([]increment, 0, len(data))
	for k, v := range data {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			continue
		}
		inc, err := strconv.ParseInt(v, 10, 64)
		if err != nil || inc == 0 {
			continue
		}
		out = append(out, increment{id: id, inc: inc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// incrementSQL builds
// UPDATE <table> SET <column> = <column> + CASE id WHEN ? THEN ? ... END WHERE id IN (...)
func incrementSQL(table, column string, incs []increment) (string, []interface{}) {
	if len(incs) == 0 {
		return "", nil
	}

	var b strings.Builder
	args := make([]interface{}, 0, len(incs)*3)
	b.WriteString("UPDATE ")
	b.WriteString(table)
	b.WriteString(" SET ")
	b.WriteString(column)
	b.WriteString(" = ")
	b.WriteString(column)
	b.WriteString(" + CASE id")
	for _, p := range incs {
		b.WriteString(" WHEN ? THEN ?")
		args = append(args, p.id, p.inc)
	}
	b.WriteString(" END WHERE id IN (")
	for i, p := range incs {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
		args = append(args, p.id)
	}
	b.WriteString(")")
	return b.String(), args
}
