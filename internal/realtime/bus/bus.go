package bus

import (
	"context"
	"encoding/json"
	"time"
)

// Event names published by the artist backend. The socket layer that
// relays them to browsers lives outside this service.
const (
	EventHistoryAppended = "artist.history.appended"
	EventImageAdded      = "artist.image.added"
	EventDocumentRebuilt = "artist.document.rebuilt"
)

type Event struct {
	Type     string          `json:"type"`
	ArtistID string          `json:"artistId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	SentAt   time.Time       `json:"sentAt"`
}

type Bus interface {
	Publish(ctx context.Context, evt Event) error
	StartForwarder(ctx context.Context, onEvent func(evt Event)) error
	Close() error
}

// NewEvent marshals payload into an Event stamped with the current time.
func NewEvent(eventType, artistID, userID string, payload interface{}) (Event, error) {
	evt := Event{Type: eventType, ArtistID: artistID, UserID: userID, SentAt: time.Now().UTC()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Event{}, err
		}
		evt.Data = raw
	}
	return evt, nil
}
