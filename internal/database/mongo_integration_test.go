package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func startMongo(ctx context.Context, t *testing.T) *mongo.Client {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("skip mongo store tests: cannot start mongo container: %v", err)
	}
	t.Cleanup(func() {
		termCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = container.Terminate(termCtx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	client, err := ConnectMongo(ctx, "mongodb://"+host+":"+port.Port())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client
}

func TestMongoStores(t *testing.T) {
	if testing.Short() {
		t.Skip("skip mongo store tests in short mode")
	}

	ctx := context.Background()
	client := startMongo(ctx, t)

	runStoreContract(t, func(t *testing.T) storeFixture {
		db := client.Database("videotube_" + primitive.NewObjectID().Hex())
		require.NoError(t, EnsureIndexes(ctx, db))
		t.Cleanup(func() { _ = db.Drop(context.Background()) })

		users := NewMongoUserStore(db)
		videos := NewMongoVideoStore(db)
		return storeFixture{
			users:  users,
			videos: videos,
			setClock: func(now func() time.Time) {
				users.now = now
				videos.now = now
			},
		}
	})
}
