package domain

import (
	"math"
	"time"
)

type PrivacyLevel string

const (
	PrivacyPublic      PrivacyLevel = "PUBLIC"
	PrivacyPrivate     PrivacyLevel = "PRIVATE"
	PrivacyFriendsOnly PrivacyLevel = "FRIENDS_ONLY"
)

// Spot is a point of interest shared by a member.
type Spot struct {
	ID           string
	Name         string
	Description  string
	Latitude     float64
	Longitude    float64
	Address      string
	PrivacyLevel PrivacyLevel
	PhotoKey     string
	CreatorID    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const earthRadiusKm = 6371

// DistanceKm returns the great-circle distance between two coordinates.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := deg2rad(lat2 - lat1)
	dLon := deg2rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func deg2rad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
