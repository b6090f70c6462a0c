package docstore

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
)

// AverageScoreField is the field TopStudents adds to each student.
const AverageScoreField = "averageScore"

// TopStudents returns every student in c with an averageScore field, the
// mean of its topics' scores, ordered from highest to lowest. Students
// without topics average 0. Ties keep collection order.
func TopStudents(ctx context.Context, c Collection) ([]bson.M, error) {
	docs, err := c.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]bson.M, 0, len(docs))
	for _, doc := range docs {
		avg, err := averageScore(doc)
		if err != nil {
			return nil, fmt.Errorf("student %v: %w", doc["_id"], err)
		}
		ranked := make(bson.M, len(doc)+1)
		for k, v := range doc {
			ranked[k] = v
		}
		ranked[AverageScoreField] = avg
		out = append(out, ranked)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i][AverageScoreField].(float64) > out[j][AverageScoreField].(float64)
	})
	return out, nil
}

func averageScore(doc bson.M) (float64, error) {
	var topics []any
	switch v := doc["topics"].(type) {
	case nil:
		return 0, nil
	case bson.A:
		topics = v
	case []any:
		topics = v
	default:
		return 0, fmt.Errorf("topics is %T, want an array", v)
	}
	if len(topics) == 0 {
		return 0, nil
	}

	var sum float64
	for i, t := range topics {
		var score any
		switch topic := t.(type) {
		case bson.M:
			score = topic["score"]
		case bson.D:
			score = topic.Map()["score"]
		default:
			return 0, fmt.Errorf("topic %d is %T, want a document", i, t)
		}
		f, err := toFloat(score)
		if err != nil {
			return 0, fmt.Errorf("topic %d score: %w", i, err)
		}
		sum += f
	}
	return sum / float64(len(topics)), nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%v is %T, want a number", v, v)
	}
}
