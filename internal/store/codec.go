package store

import (
	"encoding/json"
	"fmt"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
)

// Stable persistence keys.
const (
	KeyPartners        = "nova_partners"
	KeyReviews         = "nova_reviews"
	KeyFairnessMetrics = "nova_fairness_metrics"
	KeyChangeHistory   = "nova_change_history"
)

// Keys lists every persisted collection.
var Keys = []string{KeyPartners, KeyReviews, KeyFairnessMetrics, KeyChangeHistory}

type collections struct {
	partners []model.Partner
	reviews  []model.Review
	fairness []model.FairnessMetric
	history  []model.DataChangeEvent
}

func encode(c collections) (map[string][]byte, error) {
	out := make(map[string][]byte, len(Keys))
	for key, v := range map[string]any{
		KeyPartners:        orEmpty(c.partners),
		KeyReviews:         orEmpty(c.reviews),
		KeyFairnessMetrics: orEmpty(c.fairness),
		KeyChangeHistory:   orEmpty(c.history),
	} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		out[key] = b
	}
	return out, nil
}

// decodeInto unmarshals raw[key] into dst. A missing key leaves dst empty and
// is not an error.
func decodeInto[T any](raw map[string][]byte, key string, dst *[]T) error {
	b, ok := raw[key]
	if !ok || len(b) == 0 {
		*dst = nil
		return nil
	}
	var v []T
	if err := json.Unmarshal(b, &v); err != nil {
		*dst = nil
		return fmt.Errorf("decode %s: %w", key, err)
	}
	*dst = v
	return nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
