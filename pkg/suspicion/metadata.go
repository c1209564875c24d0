package suspicion

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Metadata is the per-submission fingerprint the scorer works from. It is
// immutable once extracted; Name is the unique key within a batch.
type Metadata struct {
	Name     string    `json:"file_name" yaml:"fileName"`
	Size     int64     `json:"file_size" yaml:"fileSize"`
	Hash     string    `json:"file_hash" yaml:"fileHash"`
	Uploaded time.Time `json:"upload_time" yaml:"uploadTime"`
}

// Extract builds submission metadata from raw file bytes. The content digest
// only needs to detect identical files, not resist tampering, so md5 is fine.
func Extract(name string, data []byte, uploaded time.Time) Metadata {
	sum := md5.Sum(data)
	return Metadata{
		Name:     name,
		Size:     int64(len(data)),
		Hash:     hex.EncodeToString(sum[:]),
		Uploaded: uploaded,
	}
}
