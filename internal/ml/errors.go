package ml

import "fmt"

// ArtifactError reports a model bundle that could not be loaded. It is fatal at
// startup: the dashboard has no degraded mode without a model.
type ArtifactError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ArtifactError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model artifact %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("model artifact %s: %s", e.Path, e.Reason)
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}

func artifactErr(path, reason string, err error) *ArtifactError {
	return &ArtifactError{Path: path, Reason: reason, Err: err}
}
