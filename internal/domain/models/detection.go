// internal/domain/models/detection.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Detection is a consumed face-recognition match event.
type Detection struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PersonName  string             `bson:"person_name" json:"person_name"`
	Confidence  float64            `bson:"confidence" json:"confidence"`
	Source      string             `bson:"source,omitempty" json:"source,omitempty"`
	CaptureTime time.Time          `bson:"capture_time" json:"capture_time"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	MediaURL    string             `bson:"media_url,omitempty" json:"media_url,omitempty"`
	NotifiedAt  *time.Time         `bson:"notified_at,omitempty" json:"notified_at,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
