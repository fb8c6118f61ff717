package document

import "time"

// Status is the derived lifecycle status of a document. It is never the
// source of truth: the cached column is refreshed from ComputeStatus.
type Status string

const (
	StatusOK      Status = "OK"
	StatusWarning Status = "Warning"
	StatusExpired Status = "Expired"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusOK, StatusWarning, StatusExpired:
		return true
	}
	return false
}

// NeedsAttention reports whether HR should be told about the document.
func (s Status) NeedsAttention() bool {
	return s == StatusWarning || s == StatusExpired
}

type Category string

const (
	CategoryIdentityCard Category = "identity_card"
	CategoryContract     Category = "contract"
	CategoryDiploma      Category = "diploma"
	CategoryCertificate  Category = "certificate"
)

// AllCategories returns the closed set of document categories
func AllCategories() []Category {
	return []Category{
		CategoryIdentityCard,
		CategoryContract,
		CategoryDiploma,
		CategoryCertificate,
	}
}

func (c Category) IsValid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// Document is employee document metadata. File content lives in file storage.
type Document struct {
	ID         string
	EmployeeID string
	Category   Category

	FileName string
	FileType string
	FileSize int64
	FilePath *string

	IssueDate  time.Time
	ExpiryDate time.Time
	Status     Status

	UploadedAt time.Time
	UpdatedAt  time.Time
}
