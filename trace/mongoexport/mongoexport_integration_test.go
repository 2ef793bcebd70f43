//go:build integration

package mongoexport_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/zolawuzhigang/Research-Agent/trace"
	"github.com/zolawuzhigang/Research-Agent/trace/mongoexport"
)

// TestExportAgainstRealMongo spins up a real MongoDB container and checks
// that a completed trace buffer round-trips into a document a caller could
// later inspect for audit purposes.
func TestExportAgainstRealMongo(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections"),
		Tmpfs:        map[string]string{"/data/db": "rw"},
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("docker not available, skipping: %v", err)
	}
	defer func() { _ = container.Terminate(ctx) }()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	uri := fmt.Sprintf("mongodb://%s:%s", host, port.Port())
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer func() { _ = client.Disconnect(ctx) }()
	require.NoError(t, client.Ping(ctx, nil))

	exp, err := mongoexport.New(mongoexport.Options{
		Client:     client,
		Database:   "research_agent_test",
		Collection: t.Name(),
	})
	require.NoError(t, err)
	require.NoError(t, exp.Ping(ctx))

	dur := int64(42)
	ok := true
	events := []trace.Event{
		{Phase: trace.PhaseToolCallEnd, Timestamp: time.Now().UTC(), StepID: 1, ToolType: "calculator", DurationMs: &dur, Success: &ok},
	}
	require.NoError(t, exp.Export(ctx, "req-1", "what is 2+2", true, events))

	coll := client.Database("research_agent_test").Collection(t.Name())
	count, err := coll.CountDocuments(ctx, bson.M{"request_id": "req-1"})
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}
