// Package mongoexport persists completed TraceContext buffers to MongoDB for
// audit purposes. This is export of *observability* data, not the
// conversation memory the spec places out of scope for long-term persistence
// (spec §1 Non-goals) — nothing here is read back into a running request; it
// exists purely so traces can be inspected after the process exits.
//
// Grounded on features/runlog/mongo/clients/mongo.Client: a thin collection
// wrapper that assigns document IDs on insert and never participates in
// request-serving reads.
package mongoexport

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/zolawuzhigang/Research-Agent/trace"
)

const (
	defaultCollection = "research_agent_traces"
	defaultTimeout    = 5 * time.Second
)

// Exporter writes completed trace buffers to a Mongo collection.
type Exporter struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// Options configures an Exporter.
type Options struct {
	Client     *mongo.Client
	Database   string
	Collection string
	Timeout    time.Duration
}

type traceDocument struct {
	RequestID string         `bson:"request_id"`
	Question  string         `bson:"question"`
	Success   bool           `bson:"success"`
	Events    []eventSubdoc  `bson:"events"`
	CreatedAt time.Time      `bson:"created_at"`
}

type eventSubdoc struct {
	Phase         string `bson:"phase"`
	Timestamp     time.Time `bson:"timestamp"`
	DurationMs    int64  `bson:"duration_ms,omitempty"`
	Success       bool   `bson:"success,omitempty"`
	StepID        int    `bson:"step_id,omitempty"`
	ToolType      string `bson:"tool_type,omitempty"`
	InputPreview  string `bson:"input_preview,omitempty"`
	OutputPreview string `bson:"output_preview,omitempty"`
}

// New constructs an Exporter backed by the given Mongo client.
func New(opts Options) (*Exporter, error) {
	if opts.Client == nil {
		return nil, errors.New("mongoexport: mongo client is required")
	}
	if opts.Database == "" {
		return nil, errors.New("mongoexport: database name is required")
	}
	collection := opts.Collection
	if collection == "" {
		collection = defaultCollection
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	coll := opts.Client.Database(opts.Database).Collection(collection)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "request_id", Value: 1}},
	}, options.Index())
	if err != nil {
		return nil, err
	}
	return &Exporter{coll: coll, timeout: timeout}, nil
}

// Export persists a completed trace buffer. It is safe to call even when
// events is empty; the document is still written so that a completed-but-
// traceless request is distinguishable from one never exported.
func (e *Exporter) Export(ctx context.Context, requestID, question string, success bool, events []trace.Event) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	docs := make([]eventSubdoc, 0, len(events))
	for _, ev := range events {
		d := eventSubdoc{
			Phase:         string(ev.Phase),
			Timestamp:     ev.Timestamp,
			StepID:        ev.StepID,
			ToolType:      ev.ToolType,
			InputPreview:  ev.InputPreview,
			OutputPreview: ev.OutputPreview,
		}
		if ev.DurationMs != nil {
			d.DurationMs = *ev.DurationMs
		}
		if ev.Success != nil {
			d.Success = *ev.Success
		}
		docs = append(docs, d)
	}
	doc := traceDocument{
		RequestID: requestID,
		Question:  question,
		Success:   success,
		Events:    docs,
		CreatedAt: time.Now().UTC(),
	}
	_, err := e.coll.InsertOne(ctx, doc)
	return err
}

// Ping verifies connectivity to the backing Mongo deployment.
func (e *Exporter) Ping(ctx context.Context) error {
	return e.coll.Database().Client().Ping(ctx, nil)
}
