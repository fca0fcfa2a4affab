package model

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const checkpointKey = "codetrace:%s:%s:done"

// Checkpoint remembers in a redis set which requests of a datatype have
// already been frozen.
type Checkpoint struct {
	client redis.Cmdable
	key    string
}

func NewCheckpoint(client redis.Cmdable, chain string, dt Datatype) *Checkpoint {
	return &Checkpoint{client: client, key: fmt.Sprintf(checkpointKey, chain, dt)}
}

func (c *Checkpoint) Done(ctx context.Context, params Params) (bool, error) {
	done, err := c.client.SIsMember(ctx, c.key, params.Key()).Result()
	if err != nil {
		return false, fmt.Errorf("get %s in key %s from redis is err: %w", params.Key(), c.key, err)
	}
	return done, nil
}

func (c *Checkpoint) MarkDone(ctx context.Context, params Params) error {
	if err := c.client.SAdd(ctx, c.key, params.Key()).Err(); err != nil {
		return fmt.Errorf("add %s to key %s in redis is err: %w", params.Key(), c.key, err)
	}
	return nil
}
