package service

import "TreasureEngine/internal/domain/models"

// PaperBar is one replayed bar handed to the paper session after risk sizing.
type PaperBar struct {
	TsMs       int64
	Symbol     string
	Price      float64
	SizeFactor float64
}

type PaperInput struct {
	Seed        uint32
	Calibration models.CalibrationParams
	Bars        []PaperBar
}

// PaperResult is consumed read-only by the canary controller.
type PaperResult struct {
	Metrics models.PaperMetrics
}

// PaperSession is the paper-trading collaborator used in PAPER mode.
type PaperSession interface {
	Run(in PaperInput) (PaperResult, error)
}
