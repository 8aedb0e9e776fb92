package model

import "time"

// Zone groups seats belonging to one physical study area. Zones scope
// the event fan-out: seat events are broadcast per zone so clients only
// watch the floor they are looking at.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name of the zone.
//  Description – free-text description shown in listings.
//  Latitude    – latitude of the location.
//  Longitude   – longitude of the location.
//  CreatedAt   – creation timestamp.
type Zone struct {
	ID          uint64    // zones.id
	Name        string    // zones.name
	Description string    // zones.description
	Latitude    float64   // zones.latitude
	Longitude   float64   // zones.longitude
	CreatedAt   time.Time // zones.created_at
}
