package cached

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"pet-reunite/internal/platform/logger"
	"pet-reunite/internal/ports/describe"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 24 * time.Hour

// Describer cachea en Redis las descripciones por imagen.
// Las imágenes son write-once, así que la descripción es estable y cada
// hit ahorra una llamada paga al colaborador generativo.
//
// Con client nil se comporta como pass-through (Redis es opcional).
type Describer struct {
	inner describe.Describer
	rdb   *redis.Client
	ttl   time.Duration
	log   logger.Logger
}

func New(inner describe.Describer, rdb *redis.Client, ttl time.Duration, log logger.Logger) *Describer {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Describer{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
		log:   log,
	}
}

func (d *Describer) Describe(ctx context.Context, image []byte) (string, error) {
	if d.rdb == nil {
		return d.inner.Describe(ctx, image)
	}

	key := cacheKey(image)

	if text, err := d.rdb.Get(ctx, key).Result(); err == nil {
		return text, nil
	} else if err != redis.Nil {
		// Redis caído no voltea el scorer: seguimos directo al colaborador.
		d.log.Warn("describe cache: get failed", map[string]any{"err": err.Error()})
	}

	text, err := d.inner.Describe(ctx, image)
	if err != nil {
		return "", err
	}

	if err := d.rdb.Set(ctx, key, text, d.ttl).Err(); err != nil {
		d.log.Warn("describe cache: set failed", map[string]any{"err": err.Error()})
	}
	return text, nil
}

func cacheKey(image []byte) string {
	sum := sha256.Sum256(image)
	return "describe:" + hex.EncodeToString(sum[:])
}
