package handlers

import "github.com/gorilla/mux"

type Handlers struct {
	Health     *HealthHandler
	User       *UserHandler
	Upload     *UploadHandler
	LiftingLad *LiftingLadHandler
	Feed       *FeedHandler
}

// RegisterRoutes mounts every API endpoint on r.
func RegisterRoutes(r *mux.Router, h Handlers) {
	r.HandleFunc("/", h.Health.Root).Methods("GET")
	r.HandleFunc("/health", h.Health.Health).Methods("GET")

	r.HandleFunc("/save-user", h.User.SaveUser).Methods("POST")
	r.HandleFunc("/search-users", h.User.SearchUsers).Methods("GET")
	r.HandleFunc("/user/{userId}", h.User.GetUser).Methods("GET")
	r.HandleFunc("/user/{userId}/qr", h.User.GetProfileQR).Methods("GET")
	r.HandleFunc("/register-device", h.User.RegisterDevice).Methods("POST")

	r.HandleFunc("/upload", h.Upload.UploadImage).Methods("POST")
	r.HandleFunc("/upload-video", h.Upload.UploadVideo).Methods("POST")
	r.HandleFunc("/add-post", h.Upload.AddPost).Methods("POST")

	r.HandleFunc("/add-lifting-lad", h.LiftingLad.AddLiftingLad).Methods("POST")
	r.HandleFunc("/accept-lifting-lad", h.LiftingLad.AcceptLiftingLad).Methods("POST")
	r.HandleFunc("/ignore-lifting-lad", h.LiftingLad.IgnoreLiftingLad).Methods("POST")
	r.HandleFunc("/lifting-lad-requests/{nickname}", h.LiftingLad.GetLiftingLadRequests).Methods("GET")
	r.HandleFunc("/lifting-lads/{nickname}", h.LiftingLad.GetLiftingLads).Methods("GET")

	r.HandleFunc("/friends-posts/{nickname}", h.Feed.GetFriendsPosts).Methods("GET")
}
