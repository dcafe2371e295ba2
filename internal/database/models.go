package database

import (
	"time"

	"github.com/aashari/go-generative-gateway/internal/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UsageCollection stores one document per backend dispatch.
const UsageCollection = "gateway-usages"

// UsageDocument is a dispatch usage record as stored in MongoDB.
type UsageDocument struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	types.UsageRecord `bson:",inline"`

	Environment string    `bson:"environment,omitempty" json:"environment,omitempty"`
	Version     string    `bson:"version,omitempty" json:"version,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// ProviderSummary aggregates usage documents per provider.
type ProviderSummary struct {
	Provider      types.Provider `bson:"_id" json:"provider"`
	Dispatches    int64          `bson:"dispatches" json:"dispatches"`
	Failures      int64          `bson:"failures" json:"failures"`
	Fallbacks     int64          `bson:"fallbacks" json:"fallbacks"`
	Jobs          int64          `bson:"jobs" json:"jobs"`
	AvgDurationMs float64        `bson:"avg_duration_ms" json:"avg_duration_ms"`
}
