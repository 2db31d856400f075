package domain

import "context"

type Service interface {
	// ProcessFile loads one file unless its (path, fingerprint) pair is already
	// audited. A returned error means nothing from the file was committed.
	ProcessFile(ctx context.Context, path string) (FileResult, error)
	// Run discovers files, processes them in sorted order, writes the stage
	// artifact for the rows loaded in this run and rebuilds metrics.
	Run(ctx context.Context, req RunRequest) (RunResult, error)
}
