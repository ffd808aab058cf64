package liftinglad

type SendRequest struct {
	RequesterName    string `json:"requesterName"`
	RequestedName    string `json:"requestedName"`
	RequesterPicture string `json:"requesterPicture"`
	FriendType       string `json:"friendType"`
}

type AcceptRequest struct {
	RequesterName    string `json:"requesterName"`
	RequestedName    string `json:"requestedName"`
	RequesterPicture string `json:"requesterPicture"`
	RequestedPicture string `json:"requestedPicture"`
	FriendType       string `json:"friendType"`
}

type IgnoreRequest struct {
	RequesterName string `json:"requesterName"`
	RequestedName string `json:"requestedName"`
}
