package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yeremiapane/drivethru-app/models"
	"github.com/yeremiapane/drivethru-app/utils"
)

const intentCacheNamespace = "drivethru"

// CachedIntentParser remembers successful classifications so repeated
// utterances skip the model round trip. Redis failures fall through to the
// wrapped parser.
type CachedIntentParser struct {
	next   IntentParser
	client redis.Cmdable
	ttl    time.Duration
}

func NewCachedIntentParser(next IntentParser, client redis.Cmdable, ttl time.Duration) *CachedIntentParser {
	return &CachedIntentParser{next: next, client: client, ttl: ttl}
}

// NewRedisClient connects to addr and checks the connection.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return client, nil
}

// IntentCacheKey normalizes message so trivially different spellings share a key.
func IntentCacheKey(message string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(message)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%s:intent:%s", intentCacheNamespace, hex.EncodeToString(sum[:]))
}

func (p *CachedIntentParser) ParseIntent(ctx context.Context, message string) models.IntentResult {
	key := IntentCacheKey(message)

	cached, err := p.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var result models.IntentResult
		if jsonErr := json.Unmarshal([]byte(cached), &result); jsonErr == nil && result.Success {
			utils.InfoLogger.WithField("key", key).Debug("Intent cache hit")
			return result
		}
	case err != redis.Nil:
		utils.ErrorLogger.Errorf("Error reading intent cache: %v", err)
	}

	result := p.next.ParseIntent(ctx, message)
	if !result.Success {
		return result
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return result
	}
	if err := p.client.Set(ctx, key, encoded, p.ttl).Err(); err != nil {
		utils.ErrorLogger.Errorf("Error writing intent cache: %v", err)
	}
	return result
}
