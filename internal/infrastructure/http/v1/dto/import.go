package dto

import (
	"github.com/MelvinKr/CutlyAI/internal/domain/catalog/importer"
)

// ImportRowError reports one rejected CSV row.
type ImportRowError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// ImportReportResponse summarizes a CSV bulk upsert.
type ImportReportResponse struct {
	Created int              `json:"created"`
	Updated int              `json:"updated"`
	Errors  []ImportRowError `json:"errors"`
}

// FromImportReport converts the domain report to response DTO.
func FromImportReport(report importer.Report) ImportReportResponse {
	errs := make([]ImportRowError, len(report.Errors))
	for i, e := range report.Errors {
		errs[i] = ImportRowError{Index: e.Index, Message: e.Message}
	}
	return ImportReportResponse{
		Created: report.Created,
		Updated: report.Updated,
		Errors:  errs,
	}
}
