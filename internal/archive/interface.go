// Package archive uploads finished job directories to S3-compatible
// object storage.
package archive

import "context"

// Archiver copies a job directory to long-term storage.
type Archiver interface {
	// Upload stores every regular file in dir under the job's prefix and
	// returns the object keys written.
	Upload(ctx context.Context, jobName, dir string) ([]string, error)
}
