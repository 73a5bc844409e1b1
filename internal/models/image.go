package models

import (
	"time"
)

// Provider tags recorded on an image. They decide how ProviderKey and
// RawURL are interpreted.
const (
	ProviderLocal  = "local"
	ProviderRemote = "remote"
)

// Image is the persisted metadata record for one uploaded asset. The delete
// token is a capability: whoever holds it may delete the record. It must never
// be serialized into a view response, only into the one-time upload receipt.
type Image struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	ProviderKey string    `json:"provider_key"`
	RawURL      string    `json:"raw_url"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	Mime        string    `json:"mime"`
	Size        int64     `json:"size"`
	DeleteToken string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// ImageView is the public shape of a record, safe to return from any endpoint.
type ImageView struct {
	ID        string    `json:"id"`
	RawURL    string    `json:"raw_url"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	Mime      string    `json:"mime"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// UploadReceipt is returned exactly once, to the uploader. It is the only
// response shape that carries the delete token.
type UploadReceipt struct {
	ImageView
	DeleteToken string `json:"delete_token"`
}

// View strips the record down to its public shape.
func (img Image) View() ImageView {
	return ImageView{
		ID:        img.ID,
		RawURL:    img.RawURL,
		Width:     img.Width,
		Height:    img.Height,
		Mime:      img.Mime,
		Size:      img.Size,
		CreatedAt: img.CreatedAt,
	}
}

// Receipt builds the one-time creation response for the uploader.
func (img Image) Receipt() UploadReceipt {
	return UploadReceipt{
		ImageView:   img.View(),
		DeleteToken: img.DeleteToken,
	}
}
