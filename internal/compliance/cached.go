package compliance

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/ppiankov/dispatcher/internal/cache"
	"github.com/ppiankov/dispatcher/internal/model"
)

// CachedClassifier memoizes verdicts by commodity text. The term tables are
// immutable for the classifier's lifetime, so a cached verdict is always the
// verdict Classify would return.
type CachedClassifier struct {
	inner *Classifier
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedClassifier wraps a classifier with a verdict cache
func NewCachedClassifier(inner *Classifier, c cache.Cache, ttl time.Duration) *CachedClassifier {
	return &CachedClassifier{inner: inner, cache: c, ttl: ttl}
}

// Classify classifies a commodity name plus optional description
func (c *CachedClassifier) Classify(name, description string) model.ComplianceVerdict {
	return c.ClassifyText(name + " " + description)
}

// ClassifyRecord classifies a commodity record
func (c *CachedClassifier) ClassifyRecord(rec model.CommodityRecord) model.ComplianceVerdict {
	return c.Classify(rec.Name, rec.Description)
}

// ClassifyText returns the cached verdict for text, classifying on a miss
func (c *CachedClassifier) ClassifyText(text string) model.ComplianceVerdict {
	key := cache.Key("verdict", strings.TrimSpace(text))

	if data, ok := c.cache.Get(key); ok {
		var v model.ComplianceVerdict
		if err := json.Unmarshal(data, &v); err == nil {
			return v
		}
	}

	v := c.inner.ClassifyText(text)
	if data, err := json.Marshal(v); err == nil {
		_ = c.cache.Set(key, data, c.ttl)
	}
	return v
}
