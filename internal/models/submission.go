package models

// UploadSubmission is the immutable input to the completion pipeline.
// ArtifactRef is the only structurally required field; every other field
// defaults to the empty string when the uploader left it blank.
type UploadSubmission struct {
	ArtifactRef   string `json:"artifact_ref"`
	ProofRef      string `json:"proof_ref,omitempty"`
	HospitalName  string `json:"hospital_name"`
	ExamType      string `json:"exam_type"`
	UploaderName  string `json:"uploader_name"`
	UploaderPhone string `json:"uploader_phone"`
	UploaderEmail string `json:"uploader_email"`
	Filename      string `json:"filename"`
	Consent       bool   `json:"consent"`
}

// WebhookEvent is the signed message pushed to the downstream relay after a
// completed upload. Field names and order are part of the wire contract; the
// HMAC signature covers the exact serialized bytes of this struct.
type WebhookEvent struct {
	Identifier    string `json:"identifier"`
	Filename      string `json:"filename"`
	RowNumber     int64  `json:"row_number"`
	CreationTime  string `json:"creation_time"` // local time, 2006-01-02 15:04:05
	HospitalName  string `json:"hospital_name"`
	ExamType      string `json:"exam_type"`
	UploaderName  string `json:"uploader_name"`
	UploaderPhone string `json:"uploader_phone"`
	UploaderEmail string `json:"uploader_email"`
	Timestamp     string `json:"timestamp"` // dispatch time, RFC 3339 UTC
}

// LedgerEntry is one row of the upload ledger together with its 1-based row
// ordinal. TransmissionTime stays empty until the downstream relay patches it.
type LedgerEntry struct {
	RowNumber        int64  `json:"row_number"`
	CreationTime     string `json:"creation_time"`
	HospitalName     string `json:"hospital_name"`
	ExamType         string `json:"exam_type"`
	UploaderName     string `json:"uploader_name"`
	UploaderPhone    string `json:"uploader_phone"`
	UploaderEmail    string `json:"uploader_email"`
	Filename         string `json:"filename"`
	Identifier       string `json:"identifier"`
	TransmissionTime string `json:"transmission_time"`
}

// PipelineOutcome is the sole externally observable result of one pipeline
// invocation. Success is false only when identifier assignment itself failed;
// every downstream stage failure is reported through Warning instead.
type PipelineOutcome struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Identifier  string `json:"identifier,omitempty"`
	ArtifactRef string `json:"artifact_ref,omitempty"`
	RowNumber   int64  `json:"row_number,omitempty"` // 0 when the ledger append failed
	Warning     string `json:"warning,omitempty"`
	Err         string `json:"error,omitempty"`
}
