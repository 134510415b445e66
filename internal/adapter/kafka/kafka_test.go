package kafka

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/unosat-hdx-etl/internal/config"
	"github.com/couchcryptid/unosat-hdx-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPublication() domain.Publication {
	return domain.Publication{
		ProductID:    "77",
		Batch:        "3f1c2a9e-0000-4000-8000-000000000001",
		DatasetName:  "flood-extent-garissa",
		DatasetURL:   "https://data.humdata.org/dataset/flood-extent-garissa",
		ShowcaseName: "flood-extent-garissa-showcase",
		Country:      "KEN",
		Tags:         []string{"geodata", "floods - storm surges"},
		PublishedAt:  time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC),
	}
}

func TestSerializeToMessage(t *testing.T) {
	p := testPublication()

	msg, err := serializeToMessage(p)
	require.NoError(t, err)

	assert.Equal(t, []byte("77"), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "batch", msg.Headers[0].Key)
	assert.Equal(t, []byte(p.Batch), msg.Headers[0].Value)
	assert.Equal(t, "published_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2024-03-15T06:00:00Z"), msg.Headers[1].Value)

	var decoded domain.Publication
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, p, decoded)
	assert.Contains(t, string(msg.Value), `"dataset_url":"https://data.humdata.org/dataset/flood-extent-garissa"`)
}

func TestNewWriter(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "catalog-publications"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "catalog-publications", w.writer.Topic)
	assert.Equal(t, kafkago.RequireAll, w.writer.RequiredAcks)
	assert.IsType(t, &kafkago.Hash{}, w.writer.Balancer)
}
