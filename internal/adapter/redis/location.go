package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
)

const locationKeyPrefix = "ride:location:"

// keepNewer stores ARGV[1] under KEYS[1] unless the stored sample is newer.
var keepNewer = goredis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	local ok, decoded = pcall(cjson.decode, cur)
	if ok and decoded.ts and tonumber(decoded.ts) > tonumber(ARGV[2]) then
		return 0
	end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// LocationCache keeps the latest sample of each ride in Redis. Samples
// expire after ttl, so a ride that stops reporting is forgotten on its own.
type LocationCache struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

func NewLocationCache(rdb goredis.Cmdable, ttl time.Duration) *LocationCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &LocationCache{rdb: rdb, ttl: ttl}
}

type cachedSample struct {
	models.LocationSample
	TS int64 `json:"ts"`
}

func locationKey(rideID uuid.UUID) string {
	return locationKeyPrefix + rideID.String()
}

func (c *LocationCache) Put(ctx context.Context, sample models.LocationSample) error {
	ts := sample.Timestamp.UnixNano()
	body, err := json.Marshal(cachedSample{LocationSample: sample, TS: ts})
	if err != nil {
		return fmt.Errorf("redis: encode sample: %w", err)
	}

	err = keepNewer.Run(ctx, c.rdb, []string{locationKey(sample.RideID)}, body, ts, c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("redis: put location: %w", err)
	}
	return nil
}

func (c *LocationCache) Latest(ctx context.Context, rideID uuid.UUID) (models.LocationSample, bool, error) {
	raw, err := c.rdb.Get(ctx, locationKey(rideID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return models.LocationSample{}, false, nil
		}
		return models.LocationSample{}, false, fmt.Errorf("redis: get location: %w", err)
	}

	var s cachedSample
	if err := json.Unmarshal(raw, &s); err != nil {
		return models.LocationSample{}, false, fmt.Errorf("redis: decode sample: %w", err)
	}
	return s.LocationSample, true, nil
}

func (c *LocationCache) Forget(ctx context.Context, rideID uuid.UUID) error {
	if err := c.rdb.Del(ctx, locationKey(rideID)).Err(); err != nil {
		return fmt.Errorf("redis: forget location: %w", err)
	}
	return nil
}
