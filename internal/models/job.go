package models

// UploadKind is the kind of file a user uploaded for background import.
type UploadKind string

const (
	UploadCSV UploadKind = "csv"
	UploadSMS UploadKind = "sms"
)

// Valid reports whether k is a supported upload kind.
func (k UploadKind) Valid() bool {
	return k == UploadCSV || k == UploadSMS
}

// ImportJob is the queue message describing a stored upload.
type ImportJob struct {
	UserID   string     `json:"userId"`
	BlobName string     `json:"blobName"`
	FileName string     `json:"fileName"`
	Kind     UploadKind `json:"kind"`
}
