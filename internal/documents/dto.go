package documents

// UploadResponse is the outward-facing representation of a stored upload.
type UploadResponse struct {
	DocID    string `json:"doc_id"`
	FileName string `json:"file_name"`
	BlobURL  string `json:"blob_url"`
}

func toResponse(up Uploaded) UploadResponse {
	return UploadResponse{
		DocID:    up.DocID,
		FileName: up.FileName,
		BlobURL:  up.BlobRef,
	}
}
