// Engineer GPS simulator. Drives a handful of virtual engineers between
// towns across the Craven district and reports their positions either over
// HTTP (as the mobile app would) or straight to the MQTT broker.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Location is a latitude/longitude pair.
type Location struct {
	Lat float64
	Lon float64
}

// Ping matches the track/single request body.
type Ping struct {
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Accuracy   *float64 `json:"accuracy,omitempty"`
	JobID      *string  `json:"job_id,omitempty"`
	Status     string   `json:"status"`
	RecordedAt string   `json:"recorded_at"`
}

// Towns the simulated engineers shuttle between.
var towns = []Location{
	{Lat: 53.9614, Lon: -2.0174}, // Skipton
	{Lat: 54.0689, Lon: -2.0158}, // Settle
	{Lat: 53.9245, Lon: -1.8217}, // Ilkley
	{Lat: 53.8321, Lon: -1.9601}, // Keighley
	{Lat: 54.0254, Lon: -2.1573}, // Long Preston
	{Lat: 53.9900, Lon: -1.9350}, // Bolton Abbey
	{Lat: 53.7938, Lon: -1.7524}, // Bradford
	{Lat: 53.9590, Lon: -1.0815}, // York
}

func jitterLocation(base Location, meters float64) Location {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (rand.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return Location{Lat: base.Lat + dLat, Lon: base.Lon + dLon}
}

func haversineKm(a, b Location) float64 {
	R := 6371.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	s := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
	return R * c
}

func lerp(a, b Location, t float64) Location {
	return Location{Lat: a.Lat + (b.Lat-a.Lat)*t, Lon: a.Lon + (b.Lon-a.Lon)*t}
}

// EngineerState tracks one simulated engineer's van.
type EngineerState struct {
	EngineerID string
	Position   Location
	Target     Location
	SpeedKmh   float64
	Status     string
	OnSiteLeft int // ticks remaining at the current site
}

func pickTarget(from Location) Location {
	for i := 0; i < 10; i++ {
		cand := towns[rand.Intn(len(towns))]
		if haversineKm(from, cand) > 5 {
			return jitterLocation(cand, 300)
		}
	}
	return jitterLocation(from, 2000)
}

func step(s *EngineerState, tickSec float64) {
	if s.Status == "on_site" {
		s.OnSiteLeft--
		if s.OnSiteLeft <= 0 {
			s.Status = "travelling"
			s.Target = pickTarget(s.Position)
		}
		return
	}

	dist := haversineKm(s.Position, s.Target)
	stepKm := s.SpeedKmh * (tickSec / 3600.0)
	if stepKm >= dist {
		// Arrived; park up for a while.
		s.Position = s.Target
		s.Status = "on_site"
		s.OnSiteLeft = 10 + rand.Intn(30)
		return
	}
	s.Position = lerp(s.Position, s.Target, stepKm/dist)
}

func pingFromState(s *EngineerState) Ping {
	accuracy := 5 + rand.Float64()*20
	return Ping{
		Latitude:   s.Position.Lat,
		Longitude:  s.Position.Lon,
		Accuracy:   &accuracy,
		Status:     s.Status,
		RecordedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

var authToken string

func sendHTTP(apiURL string, ping Ping) {
	data, err := json.Marshal(ping)
	if err != nil {
		log.WithError(err).Error("Failed to marshal ping")
		return
	}
	req, err := http.NewRequest(http.MethodPost, apiURL+"/locations/track/single", bytes.NewBuffer(data))
	if err != nil {
		log.WithError(err).Error("Failed to build request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.WithError(err).Error("Failed to send ping")
		return
	}
	resp.Body.Close()
}

func sendMQTT(client mqtt.Client, engineerID string, ping Ping) {
	data, err := json.Marshal(ping)
	if err != nil {
		log.WithError(err).Error("Failed to marshal ping")
		return
	}
	topic := "fsm/locations/" + engineerID
	if token := client.Publish(topic, 1, false, data); token.Wait() && token.Error() != nil {
		log.WithError(token.Error()).WithField("topic", topic).Error("Failed to publish ping")
	}
}

func simulateEngineer(apiURL string, mqttClient mqtt.Client, s *EngineerState, interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for range tick.C {
		s.SpeedKmh += (rand.Float64()*2 - 1) * 3
		if s.SpeedKmh < 20 {
			s.SpeedKmh = 20
		}
		if s.SpeedKmh > 70 {
			s.SpeedKmh = 70
		}

		step(s, interval.Seconds())

		ping := pingFromState(s)
		if mqttClient != nil {
			sendMQTT(mqttClient, s.EngineerID, ping)
		} else {
			sendHTTP(apiURL, ping)
		}

		log.WithFields(log.Fields{
			"engineer_id": s.EngineerID,
			"lat":         fmt.Sprintf("%.5f", ping.Latitude),
			"lon":         fmt.Sprintf("%.5f", ping.Longitude),
			"status":      ping.Status,
		}).Info("Ping sent")
	}
}

func main() {
	authToken = os.Getenv("SIM_AUTH_TOKEN")

	engineerCount := 3
	if v := os.Getenv("ENGINEER_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			engineerCount = n
		}
	}

	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	interval := 5 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	var mqttClient mqtt.Client
	if broker := os.Getenv("MQTT_BROKER"); broker != "" {
		opts := mqtt.NewClientOptions().
			AddBroker(broker).
			SetClientID(fmt.Sprintf("fsm-sim-%d", os.Getpid()))
		mqttClient = mqtt.NewClient(opts)
		if token := mqttClient.Connect(); token.Wait() && token.Error() != nil {
			log.WithError(token.Error()).Fatal("Failed to connect to MQTT broker")
		}
		log.WithField("broker", broker).Info("Publishing pings over MQTT")
	}

	log.WithFields(log.Fields{
		"engineers": engineerCount,
		"api_url":   apiURL,
		"interval":  interval,
	}).Info("Starting engineer GPS simulation")

	for i := 0; i < engineerCount; i++ {
		start := jitterLocation(towns[rand.Intn(len(towns))], 500)
		state := &EngineerState{
			EngineerID: fmt.Sprintf("engineer-%d", i+1),
			Position:   start,
			Target:     pickTarget(start),
			SpeedKmh:   30 + rand.Float64()*20,
			Status:     "travelling",
		}
		go simulateEngineer(apiURL, mqttClient, state, interval)
	}

	select {} // Block forever
}
