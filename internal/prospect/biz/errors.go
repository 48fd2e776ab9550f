package biz

import (
	"errors"
	"fmt"
)

var (
	ErrQueryGeneration = errors.New("query generation failed")
	ErrEmptyLocation   = errors.New("location and postcode are required")
)

// ParseError reports an LLM response that could not be decoded.
type ParseError struct {
	Stage string
	Raw   string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse llm response: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StageError tags an error with the pipeline stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

const (
	StageQueries    = "queries"
	StageSearch     = "search"
	StageCrawl      = "crawl"
	StageExtraction = "extraction"
	StageEnrichment = "enrichment"
	StagePersist    = "persist"
)
