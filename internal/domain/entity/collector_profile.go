package entity

import "time"

// CollectorProfile belongs to exactly one account with role "collector". It is
// created once during onboarding and only the owning collector updates it.
type CollectorProfile struct {
	UserID          string   `json:"user_id" firestore:"userId"`
	Specializations []string `json:"specializations" firestore:"specializations"`
	ServiceRadius   float64  `json:"service_radius" firestore:"serviceRadius"` // miles
	Available       bool     `json:"available" firestore:"available"`

	LastLat *float64 `json:"last_lat,omitempty" firestore:"lastLat,omitempty"`
	LastLng *float64 `json:"last_lng,omitempty" firestore:"lastLng,omitempty"`

	Rating        float64 `json:"rating,omitempty" firestore:"rating,omitempty"`
	CompletedJobs int     `json:"completed_jobs" firestore:"completedJobs"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
