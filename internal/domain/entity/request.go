package entity

import "time"

const (
	RequestPending    = "pending"
	RequestMatched    = "matched"
	RequestInProgress = "in_progress"
	RequestCompleted  = "completed"
	RequestCancelled  = "cancelled"
)

const MaxRequestPhotos = 5

// requestTransitions is the legal transition table. Terminal states absorb:
// nothing leaves completed or cancelled.
var requestTransitions = map[string][]string{
	RequestPending:    {RequestMatched, RequestCancelled},
	RequestMatched:    {RequestInProgress, RequestCancelled},
	RequestInProgress: {RequestCompleted},
}

// CanTransition reports whether a request may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range requestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether status names a known request status.
func ValidStatus(status string) bool {
	switch status {
	case RequestPending, RequestMatched, RequestInProgress, RequestCompleted, RequestCancelled:
		return true
	}
	return false
}

// Request is a customer's waste-collection request. CollectorID is empty
// exactly while the request is pending (or cancelled before a match); once
// matched it is set and never reassigned.
type Request struct {
	ID          string `json:"id" firestore:"id"`
	CustomerID  string `json:"customer_id" firestore:"customerId"`
	CollectorID string `json:"collector_id,omitempty" firestore:"collectorId,omitempty"`

	Category    string `json:"category" firestore:"category"`
	Description string `json:"description,omitempty" firestore:"description,omitempty"`

	Lat     float64 `json:"lat" firestore:"lat"`
	Lng     float64 `json:"lng" firestore:"lng"`
	Address string  `json:"address" firestore:"address"`

	Status string `json:"status" firestore:"status"` // pending, matched, in_progress, completed, cancelled

	ScheduledAt       *time.Time `json:"scheduled_at,omitempty" firestore:"scheduledAt,omitempty"`
	EstimatedQuantity string     `json:"estimated_quantity,omitempty" firestore:"estimatedQuantity,omitempty"`
	PhotoURLs         []string   `json:"photo_urls,omitempty" firestore:"photoUrls,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// ParticipantIDs returns the accounts allowed to act on a matched request.
func (r *Request) ParticipantIDs() []string {
	if r.CollectorID == "" {
		return []string{r.CustomerID}
	}
	return []string{r.CustomerID, r.CollectorID}
}

func (r *Request) HasParticipant(userID string) bool {
	return userID == r.CustomerID || (r.CollectorID != "" && userID == r.CollectorID)
}
