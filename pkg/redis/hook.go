package redis

import (
	"context"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Anshid-ck/cloth-shop-sub001/pkg/logger"
)

// slowCommandHook warns about commands that take longer than threshold.
type slowCommandHook struct {
	logg      *logger.Logger
	threshold time.Duration
}

func (h slowCommandHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h slowCommandHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		if elapsed := time.Since(start); elapsed > h.threshold {
			h.logg.Warn(h.logg.WithFields(ctx, map[string]any{
				"redis_cmd":   cmd.Name(),
				"duration_ms": elapsed.Milliseconds(),
			}), "redis.command.slow")
		}
		return err
	}
}

func (h slowCommandHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}
