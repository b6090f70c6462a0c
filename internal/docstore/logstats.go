package docstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
)

// Methods lists the HTTP methods LogStats reports, in report order.
var Methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

// StatusPath is the health-check path counted separately.
const StatusPath = "/status"

// MethodCount is the number of logs for one HTTP method.
type MethodCount struct {
	Method string
	Count  int64
}

// LogStats summarizes an nginx access-log collection.
type LogStats struct {
	Total        int64
	Methods      []MethodCount
	StatusChecks int64
}

// CollectLogStats counts the logs in c per method and the GET requests to
// StatusPath.
func CollectLogStats(ctx context.Context, c Collection) (*LogStats, error) {
	total, err := c.EstimatedCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting logs: %w", err)
	}

	s := &LogStats{Total: total, Methods: make([]MethodCount, 0, len(Methods))}
	for _, method := range Methods {
		n, err := c.CountMatching(ctx, bson.M{"method": method})
		if err != nil {
			return nil, fmt.Errorf("counting %s logs: %w", method, err)
		}
		s.Methods = append(s.Methods, MethodCount{Method: method, Count: n})
	}

	s.StatusChecks, err = c.CountMatching(ctx, bson.M{"method": "GET", "path": StatusPath})
	if err != nil {
		return nil, fmt.Errorf("counting status checks: %w", err)
	}
	return s, nil
}

// WriteTo writes the report:
//
//	94778 logs
//	Methods:
//		method GET: 93842
//		method POST: 229
//		...
//	47415 status check
func (s *LogStats) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d logs\n", s.Total)
	buf.WriteString("Methods:\n")
	for _, m := range s.Methods {
		fmt.Fprintf(&buf, "\tmethod %s: %d\n", m.Method, m.Count)
	}
	fmt.Fprintf(&buf, "%d status check\n", s.StatusChecks)
	return buf.WriteTo(w)
}
