package models

// Image is a message attachment. The payload lives in the blob store;
// Path is the public object URL.
type Image struct {
	ID        int    `json:"id"`
	MessageID int    `json:"-"`
	Path      string `json:"image"`
}
