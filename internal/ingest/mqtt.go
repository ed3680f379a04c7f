// Package ingest bridges engineer GPS pings published over MQTT into the
// location store. Field devices with flaky connectivity publish to
// fsm/locations/<engineer_id> instead of holding an HTTP session open.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cravencooling/fsm/internal/db"
	"github.com/cravencooling/fsm/internal/models"
)

const (
	locationTopic  = "fsm/locations/+"
	connectTimeout = 10 * time.Second
)

// Bridge subscribes to the location topic and writes pings to storage.
type Bridge struct {
	client    mqtt.Client
	locations db.LocationCollection
}

// NewBridge connects to the broker and starts consuming location pings.
func NewBridge(brokerURL string, locations db.LocationCollection) (*Bridge, error) {
	b := &Bridge{locations: locations}

	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID("fsm-ingest-" + uuid.NewString()[:8]).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetOnConnectHandler(func(client mqtt.Client) {
			if token := client.Subscribe(locationTopic, 1, b.handleMessage); token.Wait() && token.Error() != nil {
				log.WithError(token.Error()).Error("Failed to subscribe to location topic")
			}
		})

	b.client = mqtt.NewClient(opts)
	if token := b.client.Connect(); token.WaitTimeout(connectTimeout) && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to mqtt broker %s: %w", brokerURL, token.Error())
	}

	log.WithField("broker", brokerURL).Info("MQTT location bridge connected")
	return b, nil
}

// handleMessage decodes one published ping. The engineer id comes from the
// topic, not the payload, so a device cannot report as another engineer by
// editing the body.
func (b *Bridge) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	parts := strings.Split(msg.Topic(), "/")
	engineerID := parts[len(parts)-1]
	if engineerID == "" {
		log.WithField("topic", msg.Topic()).Warn("Location ping with empty engineer id")
		return
	}

	var point models.LocationPoint
	if err := json.Unmarshal(msg.Payload(), &point); err != nil {
		log.WithError(err).WithField("topic", msg.Topic()).Warn("Dropping malformed location ping")
		return
	}

	now := time.Now().UTC()
	recordedAt := now
	if point.RecordedAt != "" {
		if t, err := time.Parse(time.RFC3339, point.RecordedAt); err == nil {
			recordedAt = t.UTC()
		}
	}

	record := models.EngineerLocation{
		ID:         primitive.NewObjectID(),
		EngineerID: engineerID,
		Latitude:   point.Latitude,
		Longitude:  point.Longitude,
		Accuracy:   point.Accuracy,
		JobID:      point.JobID,
		Status:     point.Status,
		RecordedAt: recordedAt,
		SyncedAt:   now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.locations.InsertLocations(ctx, []models.EngineerLocation{record}); err != nil {
		log.WithError(err).WithField("engineer_id", engineerID).Error("Failed to store location ping")
	}
}

// Close disconnects from the broker, allowing in-flight work to finish.
func (b *Bridge) Close() {
	b.client.Disconnect(250)
}
