package slicebox

// stringValue is the {"value": "..."} envelope used by several box endpoints
type stringValue struct {
	Value string `json:"value"`
}

// remoteBox is the request body of /api/boxes/addremotebox
type remoteBox struct {
	Name    string `json:"name"`
	BaseURL string `json:"baseUrl"`
}

// credentials is the request body of /api/users/login
type credentials struct {
	User string `json:"user"`
	Pass string `json:"pass"`
}
