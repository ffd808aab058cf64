package liftinglad

import "time"

type RequestStatus string

// Only pending requests are ever stored. Accepted requests become a pair of
// Lad edges and declined ones are deleted.
const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusDeclined RequestStatus = "declined"
)

type Request struct {
	ID               string        `json:"id"`
	RequesterID      string        `json:"-"`
	RequestedID      string        `json:"-"`
	RequesterName    string        `json:"requesterName"`
	RequestedName    string        `json:"requestedName"`
	RequesterPicture string        `json:"requesterPicture"`
	FriendType       string        `json:"friendType"`
	Status           RequestStatus `json:"status"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// Lad is one direction of an accepted friendship, stored in the owner's list.
type Lad struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"-"`
	LadID         string    `json:"ladId"`
	OwnerName     string    `json:"ownerName"`
	LadName       string    `json:"ladName"`
	RequesterName string    `json:"requesterName"`
	RequestedName string    `json:"requestedName"`
	Picture       string    `json:"picture"`
	FriendType    string    `json:"friendType"`
	AddedAt       time.Time `json:"addedAt"`
}
