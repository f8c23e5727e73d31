package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"formalyze/internal/model"
)

// ResultsTTL bounds how stale a cached summary can get
const ResultsTTL = 5 * time.Minute

// ResultsCache holds aggregated survey results between submissions
type ResultsCache interface {
	Get(ctx context.Context, surveyID string) (*model.SurveyResults, error)
	Set(ctx context.Context, results *model.SurveyResults) error
	Invalidate(ctx context.Context, surveyID string) error
}

type resultsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultsCache creates a new results cache
func NewResultsCache(client *redis.Client) ResultsCache {
	return &resultsCache{
		client: client,
		ttl:    ResultsTTL,
	}
}

func (c *resultsCache) key(surveyID string) string {
	return fmt.Sprintf("survey:%s:results", surveyID)
}

func (c *resultsCache) Get(ctx context.Context, surveyID string) (*model.SurveyResults, error) {
	data, err := c.client.Get(ctx, c.key(surveyID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var results model.SurveyResults
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

func (c *resultsCache) Set(ctx context.Context, results *model.SurveyResults) error {
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(results.SurveyID), data, c.ttl).Err()
}

func (c *resultsCache) Invalidate(ctx context.Context, surveyID string) error {
	return c.client.Del(ctx, c.key(surveyID)).Err()
}
