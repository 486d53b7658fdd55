package ui

import (
	"github.com/yubota24504/FileVizDedup/internal/domain"
	"github.com/yubota24504/FileVizDedup/internal/services"
)

type scanResultMsg struct {
	tree       services.ScanResult
	duplicates services.DuplicateResult
	err        error
}

type scanProgressMsg struct {
	source   <-chan services.ScanProgress
	progress services.ScanProgress
}

type deletePreviewMsg struct {
	preview services.DeletePreview
	err     error
}

type deleteResultMsg struct {
	result services.DeleteResult
	err    error
}

type explainResultMsg struct {
	group domain.ExplainedGroup
}
