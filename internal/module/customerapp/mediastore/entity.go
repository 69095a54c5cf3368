package mediastore

// UploadRequest carries one binary object for the external image storage
// service. ContentType is already validated by the caller.
type UploadRequest struct {
	Filename    string
	ContentType string
	Body        []byte
}

// UploadResponse returns the opaque, stable reference the storage service
// assigned. Nothing in this service depends on its shape.
type UploadResponse struct {
	Ref string `json:"ref"`
	URL string `json:"url"`
}
