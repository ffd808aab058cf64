package notification

import "fmt"

type Event string

const (
	EventLadRequest  Event = "lifting_lad_request"
	EventLadAccepted Event = "lifting_lad_accepted"
)

type Message struct {
	Event Event
	Title string
	Body  string
	Data  map[string]string
}

// LadRequest tells the requested user someone wants to lift with them.
func LadRequest(requesterName, friendType string) Message {
	body := fmt.Sprintf("%s wants to be your Lifting Lad", requesterName)
	if friendType != "" {
		body = fmt.Sprintf("%s wants to be your %s Lifting Lad", requesterName, friendType)
	}
	return Message{
		Event: EventLadRequest,
		Title: "New Lifting Lad request",
		Body:  body,
		Data: map[string]string{
			"type":          string(EventLadRequest),
			"requesterName": requesterName,
		},
	}
}

// LadAccepted tells the requester their request went through.
func LadAccepted(requestedName string) Message {
	return Message{
		Event: EventLadAccepted,
		Title: "Request accepted",
		Body:  fmt.Sprintf("%s is now your Lifting Lad", requestedName),
		Data: map[string]string{
			"type":          string(EventLadAccepted),
			"requestedName": requestedName,
		},
	}
}
